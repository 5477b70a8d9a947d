package order

import (
	"fmt"
	"strings"

	"optideliver/internal/core/domain/model/kernel"
	"optideliver/internal/pkg/errs"
	"optideliver/internal/pkg/guard"
)

// AddressType classifies the delivery destination.
type AddressType string

const (
	Residential AddressType = "residential"
	Commercial  AddressType = "commercial"
	Industrial  AddressType = "industrial"
)

func (t AddressType) Validate() error {
	switch t {
	case Residential, Commercial, Industrial:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("addressType", fmt.Errorf("%q is not supported", string(t)))
	}
}

var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError("address must be created via NewAddress constructor")

// Address is the part of a delivery destination the slot flow needs: the
// service area slots are matched against, plus the hints used for advisory
// ranking. Street-level fields are owned by the order-management layer.
type Address struct {
	area        string
	postalCode  string
	addressType AddressType
	location    *kernel.GeoPoint
	guard       guard.ConstructorGuard
}

// NewAddress requires an area. An empty addressType defaults to Residential;
// location is optional.
func NewAddress(area, postalCode string, addressType AddressType, location *kernel.GeoPoint) (Address, error) {
	area = strings.TrimSpace(area)
	if area == "" {
		return Address{}, errs.NewValueIsRequiredError("area")
	}
	if addressType == "" {
		addressType = Residential
	}
	if err := addressType.Validate(); err != nil {
		return Address{}, err
	}
	if location != nil {
		if err := location.Validate(); err != nil {
			return Address{}, err
		}
	}

	return Address{
		area:        area,
		postalCode:  strings.TrimSpace(postalCode),
		addressType: addressType,
		location:    location,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Area() string {
	return a.area
}

func (a Address) PostalCode() string {
	return a.postalCode
}

func (a Address) Type() AddressType {
	return a.addressType
}

// Location returns the geocoded destination, or nil when unknown.
func (a Address) Location() *kernel.GeoPoint {
	return a.location
}
