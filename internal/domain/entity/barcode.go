package entity

import (
	"strings"
	"time"
)

// BarcodeFormat simbología soportada por el generador de etiquetas.
type BarcodeFormat string

const (
	BarcodeQRCode     BarcodeFormat = "QR_CODE"
	BarcodeCode128    BarcodeFormat = "CODE_128"
	BarcodeCode39     BarcodeFormat = "CODE_39"
	BarcodeEAN13      BarcodeFormat = "EAN_13"
	BarcodeEAN8       BarcodeFormat = "EAN_8"
	BarcodeITF        BarcodeFormat = "ITF"
	BarcodeUPCA       BarcodeFormat = "UPC_A"
	BarcodePDF417     BarcodeFormat = "PDF_417"
	BarcodeDataMatrix BarcodeFormat = "DATA_MATRIX"
)

var supportedFormats = map[BarcodeFormat]struct{}{
	BarcodeQRCode: {}, BarcodeCode128: {}, BarcodeCode39: {}, BarcodeEAN13: {}, BarcodeEAN8: {},
	BarcodeITF: {}, BarcodeUPCA: {}, BarcodePDF417: {}, BarcodeDataMatrix: {},
}

// ParseBarcodeFormat normaliza (trim + mayúsculas) y valida el formato.
func ParseBarcodeFormat(s string) (BarcodeFormat, bool) {
	f := BarcodeFormat(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := supportedFormats[f]
	return f, ok
}

// BarcodeEntry código de barras asociado a un producto. (Format, CodeValue) es único global.
type BarcodeEntry struct {
	ID        string
	ProductID string
	Format    BarcodeFormat
	CodeValue string
	IsPrimary bool
	CreatedAt time.Time
}
