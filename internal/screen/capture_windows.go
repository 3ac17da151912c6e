//go:build windows

package screen

import (
	"errors"
	"image"
	"unsafe"

	"github.com/lxn/win"
)

// capture copies region of the virtual desktop into a top-down 32bpp DIB.
func capture(region image.Rectangle) (image.Image, error) {
	width, height := region.Dx(), region.Dy()

	hdcScreen := win.GetDC(0)
	if hdcScreen == 0 {
		return nil, errors.New("GetDC failed")
	}
	defer win.ReleaseDC(0, hdcScreen)

	hdcMem := win.CreateCompatibleDC(hdcScreen)
	if hdcMem == 0 {
		return nil, errors.New("CreateCompatibleDC failed")
	}
	defer win.DeleteDC(hdcMem)

	bi := win.BITMAPINFOHEADER{
		BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
		BiWidth:       int32(width),
		BiHeight:      -int32(height),
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: win.BI_RGB,
	}
	var bits unsafe.Pointer
	hbm := win.CreateDIBSection(hdcScreen, &bi, win.DIB_RGB_COLORS, &bits, 0, 0)
	if hbm == 0 || bits == nil {
		return nil, errors.New("CreateDIBSection failed")
	}
	defer win.DeleteObject(win.HGDIOBJ(hbm))

	old := win.SelectObject(hdcMem, win.HGDIOBJ(hbm))
	defer win.SelectObject(hdcMem, old)

	if !win.BitBlt(hdcMem, 0, 0, int32(width), int32(height), hdcScreen, int32(region.Min.X), int32(region.Min.Y), win.SRCCOPY) {
		return nil, errors.New("BitBlt failed")
	}
	win.GdiFlush()

	// BGRA -> RGBA
	src := unsafe.Slice((*byte)(bits), width*height*4)
	img := image.NewRGBA(region)
	copy(img.Pix, src)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
		img.Pix[i+3] = 0xff
	}

	return img, nil
}
