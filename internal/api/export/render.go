package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// DefaultSlotTimes is printed for activities that carry no time of their own.
var DefaultSlotTimes = map[types.SlotKey]string{
	types.SlotMorning:   "09:00",
	types.SlotLunch:     "12:30",
	types.SlotAfternoon: "14:00",
	types.SlotDinner:    "19:00",
	types.SlotEvening:   "21:00",
}

var csvHeaders = []string{"day", "label", "city", "date", "slot", "time", "title", "description", "lat", "lng"}

// Row is one scheduled activity flattened for tabular output.
type Row struct {
	Day         int
	Label       string
	City        string
	Date        string
	Slot        types.SlotKey
	Time        string
	Title       string
	Description string
	Lat         *float64
	Lng         *float64
}

// Rows flattens a store in day order, then canonical slot order, then position.
func Rows(store types.Store) []Row {
	var out []Row
	for i, d := range store {
		for _, slot := range types.SlotOrder {
			for _, a := range d.Slots[slot] {
				t := a.Time
				if t == "" {
					t = DefaultSlotTimes[slot]
				}
				out = append(out, Row{
					Day:         i + 1,
					Label:       d.Label,
					City:        d.City,
					Date:        d.Date,
					Slot:        slot,
					Time:        t,
					Title:       a.Title,
					Description: a.Description,
					Lat:         a.Lat,
					Lng:         a.Lng,
				})
			}
		}
	}
	return out
}

func coord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

// RenderCSV writes one line per scheduled activity under a fixed header.
func RenderCSV(store types.Store) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, r := range Rows(store) {
		record := []string{
			strconv.Itoa(r.Day), r.Label, r.City, r.Date, string(r.Slot), r.Time,
			r.Title, r.Description, coord(r.Lat), coord(r.Lng),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF lays out one page per day with a slot/time/activity table. A non-empty qr PNG is
// placed on the first page.
func RenderPDF(it *types.Itinerary, summary types.ItinerarySummary, qr []byte) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(it.Name, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(it.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	if it.StartDate != nil {
		pdf.CellFormat(0, 7, "Starts "+it.StartDate.Format("2 January 2006"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 7, fmt.Sprintf("%d days, %d activities, %.1f km (about %d min on foot)",
		summary.Days, summary.Activities, summary.DistanceKm, summary.WalkingMinutes), "", 1, "L", false, 0, "")

	if len(qr) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("share-qr", opts, bytes.NewReader(qr))
		pdf.ImageOptions("share-qr", 160, 12, 35, 35, false, opts, 0, "")
	}

	for i, d := range it.Days {
		if i > 0 {
			pdf.AddPage()
		} else {
			pdf.Ln(14)
		}
		heading := fmt.Sprintf("%s - %s", d.Label, d.City)
		if d.Date != "" {
			heading += " (" + d.Date + ")"
		}
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 9, tr(heading), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(28, 8, "Slot", "1", 0, "C", true, 0, "")
		pdf.CellFormat(18, 8, "Time", "1", 0, "C", true, 0, "")
		pdf.CellFormat(134, 8, "Activity", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, slot := range types.SlotOrder {
			items := d.Slots[slot]
			if len(items) == 0 {
				pdf.CellFormat(28, 7, slotName(slot), "1", 0, "", false, 0, "")
				pdf.CellFormat(18, 7, DefaultSlotTimes[slot], "1", 0, "C", false, 0, "")
				pdf.CellFormat(134, 7, "-", "1", 1, "", false, 0, "")
				continue
			}
			for _, a := range items {
				t := a.Time
				if t == "" {
					t = DefaultSlotTimes[slot]
				}
				text := a.Title
				if a.Description != "" {
					text += ": " + a.Description
				}
				pdf.CellFormat(28, 7, slotName(slot), "1", 0, "", false, 0, "")
				pdf.CellFormat(18, 7, t, "1", 0, "C", false, 0, "")
				pdf.CellFormat(134, 7, tr(truncate(text, 90)), "1", 1, "", false, 0, "")
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func slotName(slot types.SlotKey) string {
	s := string(slot)
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
