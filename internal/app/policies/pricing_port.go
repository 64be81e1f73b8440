package policies

import (
	domainpricing "travelnest/internal/domain/pricing"
)

// PricingPolicies are the rate sets handlers quote with. Direct bookings and
// gateway checkouts use separate policies.
type PricingPolicies struct {
	Direct  domainpricing.Policy
	Gateway domainpricing.Policy
}

func DefaultPricingPolicies() PricingPolicies {
	return PricingPolicies{
		Direct:  domainpricing.DirectBooking,
		Gateway: domainpricing.GatewayCheckout,
	}
}

func (p PricingPolicies) Validate() error {
	if err := p.Direct.Validate(); err != nil {
		return err
	}
	return p.Gateway.Validate()
}
