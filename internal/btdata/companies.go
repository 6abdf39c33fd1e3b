package btdata

// companyIdentifiers maps Bluetooth SIG company identifiers to company
// names. Subset of the assigned-numbers registry covering the vendors most
// commonly seen in scans.
// Source: https://www.bluetooth.com/specifications/assigned-numbers/company-identifiers/
var companyIdentifiers = map[uint16]string{
	// Major manufacturers
	0x0001: "Ericsson Technology Licensing",
	0x0002: "Intel Corp.",
	0x0006: "Microsoft",
	0x000A: "Nokia",
	0x000F: "Broadcom Corporation",
	0x0030: "ST Microelectronics",
	0x0046: "Bang & Olufsen A/S",
	0x0047: "Plantronics, Inc.",
	0x004C: "Apple, Inc.",
	0x004D: "Motorola Mobility LLC",
	0x004E: "Razer Inc.",
	0x0057: "Garmin International, Inc.",
	0x0059: "Nordic Semiconductor ASA",
	0x0075: "Samsung Electronics Co. Ltd.",
	0x0078: "Sony Corporation",
	0x0080: "Toshiba Corporation",
	0x008A: "Bose Corporation",
	0x00D2: "Seiko Epson Corporation",
	0x00D6: "Hewlett-Packard Company",
	0x00D7: "Continental Automotive Systems",
	0x00E0: "Google Inc.",
	0x00E8: "Fitbit, Inc.",
	0x0131: "Cypress Semiconductor",
	0x0157: "Anhui Huami Information Technology Co., Ltd.",
	0x0197: "Huawei Technologies Co., Ltd.",
	0x02D5: "Spotify AB",
	0x0301: "Sony Mobile Communications Inc.",
	0x038F: "XIAOMI Inc.",
	0x0499: "Ruuvi Innovations Ltd.",

	// Audio and headsets
	0x00C6: "Beats Electronics, LLC",
	0x00F0: "JVCKENWOOD Corporation",
	0x0111: "Logitech International SA",
	0x0126: "SOL REPUBLIC",
	0x0177: "Jaybird LLC",
	0x01D7: "Jabra",
	0x0310: "Realtek Semiconductor Corp.",
	0x0362: "HARMAN International Industries, Inc.",

	// Home automation and IoT
	0x000B: "Sonos Inc.",
	0x0107: "Belkin International, Inc.",
	0x0186: "Signify Netherlands B.V.",
	0x01D9: "Flic",
	0x025A: "Roku, Inc.",
	0x026A: "Ilumi Solutions Inc.",
	0x0276: "IKEA of Sweden AB",
	0x029F: "Tile, Inc.",
	0x05D7: "LEDVANCE GmbH",

	// Gaming and peripherals
	0x0171: "Amazon.com Services, Inc.",
	0x01DA: "Logitech Europe S.A.",
	0x022B: "Nintendo Co., Ltd.",
	0x054C: "Valve Corporation",
}
