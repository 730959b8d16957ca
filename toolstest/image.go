package toolstest

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// SaveImage writes width*height float RGBA pixels found at offset of memory as an 8-bit PNG
func (c *Context) SaveImage(filename string, memory core1_0.DeviceMemory, offset, width, height int) error {
	count := width * height * 4
	data, err := c.MapMemory(memory, offset, count*4)
	if err != nil {
		return err
	}
	pixels := unsafe.Slice((*float32)(data), count)

	img := floatImage(pixels, width, height)

	err = c.UnmapMemory(memory)
	if err != nil {
		return err
	}

	return writePNG(filename, img)
}

func floatImage(pixels []float32, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			index := (y*width + x) * 4
			img.SetNRGBA(x, y, color.NRGBA{
				R: unitToByte(pixels[index]),
				G: unitToByte(pixels[index+1]),
				B: unitToByte(pixels[index+2]),
				A: unitToByte(pixels[index+3]),
			})
		}
	}
	return img
}

func unitToByte(value float32) uint8 {
	switch {
	case value <= 0:
		return 0
	case value >= 1:
		return 255
	}
	return uint8(255 * value)
}

func writePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "creating %s", filename)
	}

	err = png.Encode(file, img)
	if err != nil {
		file.Close()
		return errors.Wrapf(err, "encoding %s", filename)
	}

	return file.Close()
}
