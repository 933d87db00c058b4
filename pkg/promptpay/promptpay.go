// Package promptpay builds EMV merchant-presented QR payloads for the Thai
// PromptPay rail. The payload is a tag-length-value string terminated by a
// CRC-16/CCITT-FALSE checksum, scannable by any participating banking app.
package promptpay

import (
	"fmt"
	"strings"

	pkgerrors "github.com/richrisemansion/ebook-pop/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	idPayloadFormat       = "00"
	idPointOfInitiation   = "01"
	idMerchantAccountInfo = "29"
	idTransactionCurrency = "53"
	idTransactionAmount   = "54"
	idCountryCode         = "58"
	idCRC                 = "63"

	payloadFormatEMV          = "01"
	pointOfInitiationStatic   = "11"
	pointOfInitiationDynamic  = "12"
	merchantAccountInfoAID    = "A000000677010111"
	subIDPhone                = "01"
	subIDNationalID           = "02"
	subIDEWallet              = "03"
	currencyTHB               = "764"
	countryTH                 = "TH"
)

// Payload encodes a dynamic (amount-carrying) PromptPay payload for the given
// merchant target. The same (target, amount) pair always yields a
// byte-identical payload. Amounts are rendered with exactly two decimal
// places even when the domain value is a whole-baht integer.
func Payload(target string, amount decimal.Decimal) (string, error) {
	if amount.IsNegative() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	return build(target, &amount)
}

// StaticPayload encodes an amount-less payload; the payer keys the amount in.
func StaticPayload(target string) (string, error) {
	return build(target, nil)
}

func build(target string, amount *decimal.Decimal) (string, error) {
	account, err := merchantAccount(target)
	if err != nil {
		return "", err
	}

	initiation := pointOfInitiationStatic
	if amount != nil {
		initiation = pointOfInitiationDynamic
	}

	var b strings.Builder
	b.WriteString(tlv(idPayloadFormat, payloadFormatEMV))
	b.WriteString(tlv(idPointOfInitiation, initiation))
	b.WriteString(tlv(idMerchantAccountInfo, account))
	b.WriteString(tlv(idCountryCode, countryTH))
	b.WriteString(tlv(idTransactionCurrency, currencyTHB))
	if amount != nil {
		b.WriteString(tlv(idTransactionAmount, amount.StringFixed(2)))
	}
	b.WriteString(idCRC + "04")

	payload := b.String()
	return payload + checksum(payload), nil
}

func merchantAccount(target string) (string, error) {
	digits := sanitize(target)
	if digits == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "merchant target required")
	}

	var subID, value string
	switch {
	case len(digits) >= 15:
		subID, value = subIDEWallet, digits
	case len(digits) >= 13:
		subID, value = subIDNationalID, digits
	default:
		subID, value = subIDPhone, phoneTarget(digits)
	}

	return tlv("00", merchantAccountInfoAID) + tlv(subID, value), nil
}

// phoneTarget converts a local phone number to the 13-digit 0066 form, e.g.
// 0812345678 -> 0066812345678.
func phoneTarget(digits string) string {
	number := "0000000000000" + "66" + strings.TrimPrefix(digits, "0")
	return number[len(number)-13:]
}

func sanitize(target string) string {
	var b strings.Builder
	for _, r := range target {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func tlv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// checksum computes CRC-16/CCITT-FALSE over the payload (which already ends
// with the "6304" CRC tag header) and renders it as four uppercase hex digits.
func checksum(payload string) string {
	crc := uint16(0xFFFF)
	for _, b := range []byte(payload) {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return fmt.Sprintf("%04X", crc)
}
