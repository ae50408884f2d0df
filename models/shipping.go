package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	phoneRule   = "len=10,number"
	pincodeRule = "len=6,number"
)

var validate = validator.New()

// ValidPhone reports whether s is exactly 10 digits.
func ValidPhone(s string) bool { return validate.Var(s, phoneRule) == nil }

// ValidPincode reports whether s is exactly 6 digits.
func ValidPincode(s string) bool { return validate.Var(s, pincodeRule) == nil }

// ShippingForm is the contact and delivery data collected at checkout and
// when saving an address.
type ShippingForm struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

// Trim strips surrounding whitespace from every field.
func (f ShippingForm) Trim() ShippingForm {
	return ShippingForm{
		FullName: strings.TrimSpace(f.FullName),
		Phone:    strings.TrimSpace(f.Phone),
		Address:  strings.TrimSpace(f.Address),
		City:     strings.TrimSpace(f.City),
		State:    strings.TrimSpace(f.State),
		Pincode:  strings.TrimSpace(f.Pincode),
	}
}

// Problems returns a message per invalid field, or nil when the form is valid.
func (f ShippingForm) Problems() map[string]string {
	out := map[string]string{}
	if f.FullName == "" {
		out["fullName"] = "Full name is required"
	}
	if !ValidPhone(f.Phone) {
		out["phone"] = "Phone must be exactly 10 digits"
	}
	if f.Address == "" {
		out["address"] = "Address is required"
	}
	if f.City == "" {
		out["city"] = "City is required"
	}
	if f.State == "" {
		out["state"] = "State is required"
	}
	if !ValidPincode(f.Pincode) {
		out["pincode"] = "Pincode must be exactly 6 digits"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (a Address) Form() ShippingForm {
	return ShippingForm{
		FullName: a.FullName,
		Phone:    a.Phone,
		Address:  a.Address,
		City:     a.City,
		State:    a.State,
		Pincode:  a.Pincode,
	}
}
