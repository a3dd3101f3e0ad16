package order

// Normalize converts a Speedy address into a canonical one. A nil address
// normalizes to nil.
func (a *SpeedyAddress) Normalize() *Address {
	if a == nil {
		return nil
	}
	return &Address{
		Street:     cloneString(a.StreetAddress),
		City:       cloneString(a.City),
		County:     cloneString(a.Region),
		PostalCode: cloneString(a.PostCode),
		Country:    cloneString(a.Country),
	}
}

// Normalize converts a Vault location into a canonical address. A nil
// location normalizes to nil.
func (l *VaultLocation) Normalize() *Address {
	if l == nil {
		return nil
	}
	return &Address{
		Street:     cloneString(l.AddressLine),
		City:       cloneString(l.Town),
		County:     cloneString(l.Region),
		PostalCode: cloneString(l.Zip),
		Country:    cloneString(l.CountryCode),
	}
}

func (d *VaultDeliveryDetails) location() *VaultLocation {
	if d == nil {
		return nil
	}
	return d.ShippingLocation
}

func (d *VaultBillingDetails) location() *VaultLocation {
	if d == nil {
		return nil
	}
	return d.BillingLocation
}

func (a *Address) clone() *Address {
	if a == nil {
		return nil
	}
	return &Address{
		Street:     cloneString(a.Street),
		City:       cloneString(a.City),
		County:     cloneString(a.County),
		PostalCode: cloneString(a.PostalCode),
		Country:    cloneString(a.Country),
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
