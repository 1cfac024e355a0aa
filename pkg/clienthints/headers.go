package clienthints

// Request headers read by Source.
const (
	HeaderUserAgent       = "User-Agent"
	HeaderUAMobile        = "Sec-CH-UA-Mobile"
	HeaderUAPlatform      = "Sec-CH-UA-Platform"
	HeaderDeviceMemory    = "Sec-CH-Device-Memory"
	HeaderDeviceMemoryOld = "Device-Memory"
	HeaderViewportWidth   = "Sec-CH-Viewport-Width"
	HeaderViewportOld     = "Viewport-Width"
	HeaderViewportHeight  = "Sec-CH-Viewport-Height"
	HeaderDPR             = "Sec-CH-DPR"
	HeaderDPROld          = "DPR"
	HeaderECT             = "ECT"
	HeaderDownlink        = "Downlink"
	HeaderRTT             = "RTT"
	HeaderSaveData        = "Save-Data"
	HeaderReducedMotion   = "Sec-CH-Prefers-Reduced-Motion"
	HeaderColorScheme     = "Sec-CH-Prefers-Color-Scheme"
)

// AcceptCH lists the hints requested from browsers through Accept-CH.
var AcceptCH = []string{
	HeaderUAMobile,
	HeaderUAPlatform,
	HeaderDeviceMemory,
	HeaderDeviceMemoryOld,
	HeaderViewportWidth,
	HeaderViewportOld,
	HeaderViewportHeight,
	HeaderDPR,
	HeaderDPROld,
	HeaderECT,
	HeaderDownlink,
	HeaderRTT,
	HeaderSaveData,
	HeaderReducedMotion,
	HeaderColorScheme,
}

// VaryOn lists the hints a response depends on once adapted.
var VaryOn = []string{
	HeaderDeviceMemory,
	HeaderViewportWidth,
	HeaderDPR,
	HeaderECT,
	HeaderSaveData,
}
