package service

import "github.com/skip2/go-qrcode"

// QRGenerator renders a QR payload into an image.
type QRGenerator interface {
	Generate(payload string) ([]byte, error)
}

// PNGQRGenerator renders payloads as PNG at a fixed size, suitable for
// printing on receipts or showing on the order confirmation screen.
type PNGQRGenerator struct {
	Size int
}

func (g PNGQRGenerator) Generate(payload string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}
