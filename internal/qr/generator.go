package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ReviewURL: şubenin müşteri geri bildirim formu linki
func ReviewURL(frontendBaseURL string, branchID uint) string {
	return fmt.Sprintf("%s/review/%d", strings.TrimRight(frontendBaseURL, "/"), branchID)
}

// DataURI: verilen içeriği PNG QR koduna çevirip data URI olarak döndürür
func DataURI(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("QR kodu üretilemedi: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
