// cptv2png is a tool which converts the frames of CPTV files to PNG
// images, one image per frame, normalised to the frame's dynamic
// range.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/spf13/pflag"

	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/frame"
)

var flagForce bool

func init() {
	pflag.BoolVarP(&flagForce, "force", "f", false, "Force overwrite of existing PNG files.")
}

func main() {
	pflag.Parse()
	for _, path := range pflag.Args() {
		if err := cptv2png(path); err != nil {
			log.Fatal("unable to convert clip", "path", path, "err", err)
		}
	}
}

// cptv2png converts each visible frame of the provided CPTV file to a
// PNG file.
func cptv2png(path string) error {
	s, err := cptv.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	base := pathutil.TrimExt(path)
	for frameNum := 0; ; frameNum++ {
		f, err := s.ParseNext()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		pngPath := fmt.Sprintf("%s-%04d.png", base, frameNum)
		if !flagForce {
			if osutil.Exists(pngPath) {
				return fmt.Errorf("the file %q exists already", pngPath)
			}
		}
		if err := writePNG(pngPath, f); err != nil {
			return err
		}
		log.Info("wrote frame", "path", pngPath)
	}
}

// writePNG stores one frame as an 8-bit greyscale PNG, stretching the
// frame's min..max range over 0..255.
func writePNG(path string, f *frame.Frame) error {
	d := f.Image
	img := image.NewGray(image.Rect(0, 0, d.Width(), d.Height()))
	min, max := d.Min(), d.Max()
	scale := 1.0
	if max > min {
		scale = 255.0 / float64(max-min)
	}
	for y := 0; y < d.Height(); y++ {
		for x := 0; x < d.Width(); x++ {
			img.SetGray(x, y, grayOf(d.At(y, x), min, scale))
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, img)
}

func grayOf(v, min uint16, scale float64) color.Gray {
	return color.Gray{Y: uint8(float64(v-min) * scale)}
}
