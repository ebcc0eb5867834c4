// cptv-info prints the header metadata of CPTV files, and optionally
// the metadata of every frame.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/meta"
)

var flagFrames bool

func init() {
	pflag.BoolVarP(&flagFrames, "frames", "f", false, "Also list per-frame metadata.")
	pflag.Usage = usage
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cptv-info [flags] FILE...")
	pflag.PrintDefaults()
}

func main() {
	pflag.Parse()
	if pflag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	for _, path := range pflag.Args() {
		if err := info(path); err != nil {
			log.Fatal("unable to read clip", "path", path, "err", err)
		}
	}
}

func info(path string) error {
	s, err := cptv.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	printHeader(path, s.Header)

	frameNum := 0
	for {
		f, err := s.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if flagFrames {
			fmt.Printf("frame #%d\n", frameNum)
			fmt.Printf("  time on: %d ms\n", f.TimeOn)
			fmt.Printf("  bits per pixel: %d\n", f.BitsPerPixel)
			if f.LastFFCTime != nil {
				fmt.Printf("  last FFC: %d ms\n", *f.LastFFCTime)
			}
			if f.TempC != nil {
				fmt.Printf("  frame temp: %.1f C\n", *f.TempC)
			}
			fmt.Printf("  range: %d..%d\n", f.Image.Min(), f.Image.Max())
		}
		frameNum++
	}

	fmt.Printf("frames: %d\n", frameNum)
	stats := s.Stats()
	if stats.FrameCount() > 0 {
		fmt.Printf("clip range: %d..%d (%d contributing frames)\n", stats.Min(), stats.Max(), stats.FrameCount())
	}
	return nil
}

func printHeader(path string, hdr *meta.Header) {
	fmt.Printf("%s\n", path)
	fmt.Printf("  device: %s\n", hdr.DeviceName)
	fmt.Printf("  dimensions: %dx%d\n", hdr.Width, hdr.Height)
	fmt.Printf("  timestamp: %d us\n", hdr.Timestamp)
	fmt.Printf("  fps: %d\n", hdr.FrameRate())
	if hdr.Brand != nil {
		fmt.Printf("  brand: %s\n", *hdr.Brand)
	}
	if hdr.Model != nil {
		fmt.Printf("  model: %s\n", *hdr.Model)
	}
	if hdr.DeviceID != nil {
		fmt.Printf("  device id: %d\n", *hdr.DeviceID)
	}
	if hdr.Serial != nil {
		fmt.Printf("  serial: %d\n", *hdr.Serial)
	}
	if hdr.Firmware != nil {
		fmt.Printf("  firmware: %s\n", *hdr.Firmware)
	}
	if hdr.Latitude != nil && hdr.Longitude != nil {
		fmt.Printf("  location: %.5f, %.5f\n", *hdr.Latitude, *hdr.Longitude)
	}
	if hdr.PreviewSecs != nil {
		fmt.Printf("  preview: %d s\n", *hdr.PreviewSecs)
	}
	if hdr.HasBackgroundFrame {
		fmt.Println("  has background frame")
	}
}
