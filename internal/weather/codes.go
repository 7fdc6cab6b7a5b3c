package weather

// Icon is the name of a presentation icon. The set is closed: every value
// returned by Describe is one of the constants below.
type Icon string

const (
	IconSun       Icon = "sun"
	IconCloudSun  Icon = "cloud-sun"
	IconCloud     Icon = "cloud"
	IconFog       Icon = "cloud-fog"
	IconDrizzle   Icon = "cloud-drizzle"
	IconRain      Icon = "cloud-rain"
	IconSnow      Icon = "cloud-snow"
	IconLightning Icon = "cloud-lightning"
)

// Icons lists every icon name Describe can return.
func Icons() []Icon {
	return []Icon{IconSun, IconCloudSun, IconCloud, IconFog, IconDrizzle, IconRain, IconSnow, IconLightning}
}

// ValidIcon reports whether s names a known icon.
func ValidIcon(s string) bool {
	for _, icon := range Icons() {
		if string(icon) == s {
			return true
		}
	}
	return false
}

// CodeInfo is the display form of a WMO weather code.
type CodeInfo struct {
	Description string `json:"description"`
	Icon        Icon   `json:"icon"`
}

// UnknownCode is returned for codes missing from the table.
var UnknownCode = CodeInfo{Description: "알 수 없음", Icon: IconCloud}

// WMO weather interpretation codes as reported by Open-Meteo.
var codeTable = map[int]CodeInfo{
	0:  {"맑음", IconSun},
	1:  {"대체로 맑음", IconSun},
	2:  {"구름 조금", IconCloudSun},
	3:  {"흐림", IconCloud},
	45: {"안개", IconFog},
	48: {"서리 안개", IconFog},
	51: {"약한 이슬비", IconDrizzle},
	53: {"이슬비", IconDrizzle},
	55: {"강한 이슬비", IconDrizzle},
	56: {"약한 어는 이슬비", IconDrizzle},
	57: {"강한 어는 이슬비", IconDrizzle},
	61: {"약한 비", IconRain},
	63: {"비", IconRain},
	65: {"강한 비", IconRain},
	66: {"약한 어는 비", IconRain},
	67: {"강한 어는 비", IconRain},
	71: {"약한 눈", IconSnow},
	73: {"눈", IconSnow},
	75: {"강한 눈", IconSnow},
	77: {"싸락눈", IconSnow},
	80: {"약한 소나기", IconRain},
	81: {"소나기", IconRain},
	82: {"강한 소나기", IconRain},
	85: {"약한 눈 소나기", IconSnow},
	86: {"강한 눈 소나기", IconSnow},
	95: {"뇌우", IconLightning},
	96: {"우박을 동반한 뇌우", IconLightning},
	99: {"강한 우박을 동반한 뇌우", IconLightning},
}

// Describe maps a weather code to its description and icon. It never fails:
// unknown codes yield UnknownCode.
func Describe(code int) CodeInfo {
	if info, ok := codeTable[code]; ok {
		return info
	}
	return UnknownCode
}
