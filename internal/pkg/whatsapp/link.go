// Package whatsapp builds prefilled chat deep links for buyer/seller contact.
package whatsapp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/campus-marketplace/internal/pkg/digits"
)

const baseURL = "https://wa.me/"

var ErrNoPhone = errors.New("whatsapp: phone number has no digits")

// Link returns https://wa.me/<digits>?text=<escaped text>.
func Link(phone, text string) (string, error) {
	number := digits.Only(phone)
	if number == "" {
		return "", ErrNoPhone
	}
	if text == "" {
		return baseURL + number, nil
	}
	return baseURL + number + "?text=" + escapeText(text), nil
}

// escapeText percent-encodes text with spaces as %20. A literal '+' is
// already escaped as %2B, so replacing the rest is safe.
func escapeText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// InterestMessage is the text a buyer sends to a seller about a listing.
func InterestMessage(sellerName, productTitle, marketplace string) string {
	greeting := "Olá!"
	if sellerName != "" {
		greeting = fmt.Sprintf("Olá %s!", sellerName)
	}
	return fmt.Sprintf("%s Vi seu anúncio \"%s\" no %s e tenho interesse.", greeting, productTitle, marketplace)
}
