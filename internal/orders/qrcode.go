package orders

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderNumber string) ([]byte, error)
}

// TrackingQR encodes the customer tracking URL for a placed order as a PNG.
type TrackingQR struct {
	BaseURL string
}

func (g TrackingQR) Generate(orderNumber string) ([]byte, error) {
	data := fmt.Sprintf("%s/orders/%s", g.BaseURL, orderNumber)
	return qrcode.Encode(data, qrcode.Medium, 256)
}

var _ QRGenerator = TrackingQR{}
