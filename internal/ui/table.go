package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rmercier/bluescan/internal/scan"
)

// column widths for the device table
const (
	nameColWidth    = 28
	addressColWidth = 19
	signalColWidth  = 6
	companyColWidth = 24
)

// RenderDeviceTable renders the merged device catalog as an aligned table
// with a styled header row. Devices render in the order given.
func RenderDeviceTable(devices []*scan.CanonicalDevice) string {
	if len(devices) == 0 {
		return AddressStyle.Render("  No devices found.")
	}

	var b strings.Builder

	header := fmt.Sprintf("  %-*s %-*s %*s  %-*s %s",
		nameColWidth, "NAME",
		addressColWidth, "ADDRESS",
		signalColWidth, "RSSI",
		companyColWidth, "COMPANY",
		"SOURCES",
	)
	b.WriteString(HeaderRowStyle.Render(header))
	b.WriteString("\n")

	for _, d := range devices {
		b.WriteString(renderDeviceRow(d))
		b.WriteString("\n")
	}
	return b.String()
}

func renderDeviceRow(d *scan.CanonicalDevice) string {
	name := truncate(d.Name, nameColWidth)
	address := truncate(d.Address, addressColWidth)
	company := truncate(companyOf(d), companyColWidth)
	sources := strings.Join(d.DetectionSources, ",")

	signal := strings.Repeat(" ", signalColWidth-1) + "-"
	if d.SignalStrength != nil {
		raw := strconv.Itoa(*d.SignalStrength)
		signal = SignalStyle(*d.SignalStrength).Render(fmt.Sprintf("%*s", signalColWidth, raw))
	}

	return fmt.Sprintf("  %s %s %s  %s %s",
		DeviceNameStyle.Render(fmt.Sprintf("%-*s", nameColWidth, name)),
		AddressStyle.Render(fmt.Sprintf("%-*s", addressColWidth, address)),
		signal,
		CompanyStyle.Render(fmt.Sprintf("%-*s", companyColWidth, company)),
		SourceTagStyle.Render(sources),
	)
}

// RenderDeviceDetails renders one device as a key-value block, used by
// the detailed output format.
func RenderDeviceDetails(d *scan.CanonicalDevice) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("  " + d.Name))
	b.WriteString("\n")

	writeDetail(&b, "Address", d.Address)
	if d.SignalStrength != nil {
		writeDetail(&b, "Signal", fmt.Sprintf("%d dBm", *d.SignalStrength))
	}
	if company := companyOf(d); company != "" {
		writeDetail(&b, "Company", company)
	}
	if d.Derived != nil && d.Derived.Category != "" {
		writeDetail(&b, "Category", d.Derived.Category)
	}
	writeDetail(&b, "Sources", strings.Join(d.DetectionSources, ", "))
	if len(d.MergedFrom) > 1 {
		writeDetail(&b, "Merged from", strings.Join(d.MergedFrom, ", "))
	}
	if alt, ok := d.Attr(scan.AttrAlternateNames); ok {
		writeDetail(&b, "Also known as", strings.Join(alt.StrList, ", "))
	}

	return b.String()
}

func writeDetail(b *strings.Builder, key, value string) {
	b.WriteString(SummaryKeyStyle.Render("   " + key + ":"))
	b.WriteString(" ")
	b.WriteString(SummaryValueStyle.Render(value))
	b.WriteString("\n")
}

func companyOf(d *scan.CanonicalDevice) string {
	if d.Derived == nil {
		return ""
	}
	return d.Derived.CompanyName
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
