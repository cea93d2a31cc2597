package domain

// Carrier names used across the policy matrix and suggestion table
const (
	CarrierJTExpress   = "J&T Express"
	CarrierGHTK        = "GHTK"
	CarrierViettelPost = "Viettel Post"
)

// Carrier routing thresholds, in VND
const (
	// WebsiteExpressThreshold routes high-value website orders to the fast carrier
	WebsiteExpressThreshold = 2_000_000
	// ShopeeEconomyThreshold routes small Shopee orders to the economy carrier
	ShopeeEconomyThreshold = 500_000
)

// SuggestCarrier picks a carrier for an order. The table is
// priority-ordered; the first matching rule wins:
//
//  1. TikTok always ships with the fast carrier.
//  2. High-value website orders ship with the fast carrier.
//  3. Small Shopee orders ship economy.
//  4. Everything else ships with the default carrier.
func SuggestCarrier(platform Platform, orderValue float64) string {
	switch {
	case platform == PlatformTikTok:
		return CarrierJTExpress
	case platform == PlatformWebsite && orderValue > WebsiteExpressThreshold:
		return CarrierJTExpress
	case platform == PlatformShopee && orderValue < ShopeeEconomyThreshold:
		return CarrierGHTK
	default:
		return CarrierViettelPost
	}
}
