package btdata

// DeviceHint is what the OUI prefix table knows about a vendor prefix.
type DeviceHint struct {
	Company      string `yaml:"company"`
	Category     string `yaml:"category"`
	Model        string `yaml:"model"`
	FriendlyName string `yaml:"friendly_name"`
}

// ouiPrefixes maps the first three octets of a normalized MAC address to
// vendor hints. Prefixes use the canonical "AA:BB:CC" form.
var ouiPrefixes = map[string]DeviceHint{
	// Freebox
	"14:0C:76": {Company: "Freebox SA", Category: "Freebox", Model: "Freebox Player", FriendlyName: "Freebox Player"},
	"E4:F0:42": {Company: "Freebox SA", Category: "Freebox", Model: "Freebox Revolution", FriendlyName: "Freebox Revolution"},
	"DC:F5:05": {Company: "Freebox SA", Category: "Freebox", Model: "Freebox Delta", FriendlyName: "Freebox Delta"},
	"38:17:E3": {Company: "Freebox SA", Category: "Freebox", Model: "Freebox Mini 4K", FriendlyName: "Freebox Mini 4K"},
	"F4:CA:E5": {Company: "Freebox SA", Category: "Freebox", Model: "Freebox", FriendlyName: "Freebox"},
	"54:B8:0A": {Company: "Freebox SA", Category: "Freebox", Model: "Freebox Pop", FriendlyName: "Freebox Pop"},
	"00:07:CB": {Company: "Freebox SA", Category: "Freebox", Model: "Freebox", FriendlyName: "Freebox"},
	"00:24:D4": {Company: "Freebox SAS", Category: "Freebox", Model: "Freebox", FriendlyName: "Freebox"},
	"70:FC:8F": {Company: "Freebox SA", Category: "Freebox", Model: "Freebox Server", FriendlyName: "Freebox Server"},
	"14:A7:2B": {Company: "Freebox SA", Category: "Freebox", Model: "Freebox Server Mini", FriendlyName: "Freebox Server Mini"},

	// Apple
	"00:03:93": {Company: "Apple, Inc.", Category: "Computer", Model: "Mac", FriendlyName: "Mac"},
	"00:0A:95": {Company: "Apple, Inc.", Category: "Computer", Model: "Mac", FriendlyName: "Mac"},
	"00:1E:C2": {Company: "Apple, Inc.", Category: "Computer", Model: "Mac", FriendlyName: "Mac"},
	"00:25:00": {Company: "Apple, Inc.", Category: "Computer", Model: "Mac", FriendlyName: "Mac"},
	"04:15:52": {Company: "Apple, Inc.", Category: "Mobile", Model: "iPhone", FriendlyName: "iPhone"},
	"04:26:65": {Company: "Apple, Inc.", Category: "Mobile", Model: "iPhone", FriendlyName: "iPhone"},
	"04:48:9A": {Company: "Apple, Inc.", Category: "Mobile", Model: "iPhone", FriendlyName: "iPhone"},
	"04:69:F8": {Company: "Apple, Inc.", Category: "Mobile", Model: "iPhone", FriendlyName: "iPhone"},
	"04:F7:E4": {Company: "Apple, Inc.", Category: "Audio", Model: "AirPods", FriendlyName: "AirPods"},

	// Samsung
	"00:1A:8A": {Company: "Samsung Electronics Co.,Ltd", Category: "Mobile", Model: "Galaxy", FriendlyName: "Samsung Galaxy"},
	"00:21:19": {Company: "Samsung Electronics Co.,Ltd", Category: "Mobile", Model: "Galaxy", FriendlyName: "Samsung Galaxy"},
	"08:08:C2": {Company: "Samsung Electronics Co.,Ltd", Category: "Mobile", Model: "Galaxy", FriendlyName: "Samsung Galaxy"},
	"14:49:E0": {Company: "Samsung Electronics Co.,Ltd", Category: "Mobile", Model: "Galaxy", FriendlyName: "Samsung Galaxy"},
	"1C:3A:DE": {Company: "Samsung Electronics Co.,Ltd", Category: "Mobile", Model: "Galaxy", FriendlyName: "Samsung Galaxy"},

	// Audio vendors
	"00:0C:8A": {Company: "Bose Corporation", Category: "Audio", Model: "Speaker", FriendlyName: "Bose Speaker"},
	"04:52:C7": {Company: "Bose Corporation", Category: "Audio", Model: "Headphones", FriendlyName: "Bose Headphones"},
	"00:02:3C": {Company: "Creative Technology Ltd.", Category: "Audio", Model: "Speaker", FriendlyName: "Creative Speaker"},
	"00:16:94": {Company: "Sennheiser Communications A/S", Category: "Audio", Model: "Headset", FriendlyName: "Sennheiser Headset"},
	"00:1B:66": {Company: "Sennheiser electronic GmbH & Co. KG", Category: "Audio", Model: "Headset", FriendlyName: "Sennheiser Headset"},
	"00:18:09": {Company: "Plantronics, Inc.", Category: "Audio", Model: "Headset", FriendlyName: "Plantronics Headset"},
	"B8:69:C2": {Company: "Sonos, Inc.", Category: "Audio", Model: "Speaker", FriendlyName: "Sonos Speaker"},

	// Computers and peripherals
	"00:1F:20": {Company: "Logitech Europe SA", Category: "Peripheral", Model: "Input Device", FriendlyName: "Logitech Device"},
	"00:07:61": {Company: "Logitech Inc", Category: "Peripheral", Model: "Input Device", FriendlyName: "Logitech Device"},
	"5C:F3:70": {Company: "CC&C Technologies, Inc.", Category: "Network", Model: "Adapter", FriendlyName: "Network Adapter"},
	"B8:27:EB": {Company: "Raspberry Pi Foundation", Category: "Computer", Model: "Raspberry Pi", FriendlyName: "Raspberry Pi"},
	"DC:A6:32": {Company: "Raspberry Pi Trading Ltd", Category: "Computer", Model: "Raspberry Pi", FriendlyName: "Raspberry Pi"},

	// TVs and set-top boxes
	"00:09:DF": {Company: "Vestel Elektronik San ve Tic. A.S.", Category: "TV", Model: "Smart TV", FriendlyName: "Smart TV"},
	"CC:B1:1A": {Company: "Samsung Electronics Co.,Ltd", Category: "TV", Model: "Smart TV", FriendlyName: "Samsung TV"},
	"D4:9D:C0": {Company: "Samsung Electronics Co.,Ltd", Category: "TV", Model: "Smart TV", FriendlyName: "Samsung TV"},
}
