package domain

// Provider identifies an upstream media platform.
type Provider string

const (
	ProviderYouTube   Provider = "youtube"
	ProviderInstagram Provider = "instagram"
	ProviderTikTok    Provider = "tiktok"
	ProviderTwitter   Provider = "twitter"
	ProviderFacebook  Provider = "facebook"
)

// MediaType classifies delivered media.
type MediaType string

const (
	MediaTypeVideo    MediaType = "video"
	MediaTypeDocument MediaType = "document"
)

// OperationClass distinguishes fetch workloads for admission control.
type OperationClass string

const (
	OpFetch     OperationClass = "fetch"
	OpTranslate OperationClass = "translate"
)
