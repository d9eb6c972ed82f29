package storage

// htmlEntities maps the HTML named entities Confluence emits in storage
// bodies to their replacement text. encoding/xml knows only the five XML
// predefined entities, so anything else the API returns must be listed here.
var htmlEntities = map[string]string{
	"nbsp":   " ",
	"copy":   "©",
	"reg":    "®",
	"trade":  "™",
	"ndash":  "–",
	"mdash":  "—",
	"lsquo":  "‘",
	"rsquo":  "’",
	"ldquo":  "“",
	"rdquo":  "”",
	"hellip": "…",
	"middot": "·",
	"bull":   "•",
	"laquo":  "«",
	"raquo":  "»",
	"times":  "×",
	"divide": "÷",
	"deg":    "°",
	"plusmn": "±",
	"frac12": "½",
	"sect":   "§",
	"para":   "¶",
	"euro":   "€",
	"pound":  "£",
	"yen":    "¥",
	"cent":   "¢",
	"rarr":   "→",
	"larr":   "←",
}
