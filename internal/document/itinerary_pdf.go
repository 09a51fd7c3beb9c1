// Package document renders itinerary quotes as PDF files.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/pricing"
)

const qrImageName = "itinerary-qr"

// ItineraryPDF renders an itinerary quote with a per-day summary, totals
// and a QR code that links to the itinerary.
type ItineraryPDF struct {
	companyName   string
	publicBaseURL string
	now           func() time.Time
}

// NewItineraryPDF creates a renderer
func NewItineraryPDF(companyName, publicBaseURL string) *ItineraryPDF {
	if companyName == "" {
		companyName = "Travel Agency"
	}
	return &ItineraryPDF{
		companyName:   companyName,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// ReferenceURL is the address encoded in the QR code
func (r *ItineraryPDF) ReferenceURL(it *domain.Itinerary) string {
	return fmt.Sprintf("%s/itineraries/%s", r.publicBaseURL, it.ID)
}

// FileName is the download name for a rendered itinerary version
func FileName(it *domain.Itinerary) string {
	return fmt.Sprintf("itinerary-%s-v%d.pdf", it.ID.String()[:8], it.Version)
}

// Render builds the PDF. catalog resolves selected services to names; ids
// it cannot resolve are printed as unavailable.
func (r *ItineraryPDF) Render(it *domain.Itinerary, catalog pricing.Catalog) ([]byte, error) {
	qrPNG, err := qrcode.Encode(r.ReferenceURL(it), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	client := it.ClientSnapshot.Data()
	breakdown := it.CostBreakdown.Data()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Itinerary for %s", client.Name), true)
	pdf.SetAuthor(r.companyName, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(qrImageName, 160, 12, 35, 35, false, imageOpts, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, r.companyName)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Itinerary %s  (version %d, %s)", it.ID, it.Version, it.Status))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Issued "+r.now().UTC().Format("2006-01-02"))
	pdf.Ln(12)

	r.clientSection(pdf, client, it)
	r.daysSection(pdf, it.DayPlans, breakdown, catalog)
	r.totalsSection(pdf, it, breakdown)

	if pdf.Err() {
		return nil, fmt.Errorf("failed to render PDF: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *ItineraryPDF) clientSection(pdf *gofpdf.Fpdf, client domain.ClientSnapshot, it *domain.Itinerary) {
	heading(pdf, "Traveller")
	line(pdf, "Name", client.Name)
	if client.IsFlexible {
		line(pdf, "Travel month", client.FlexibleMonth)
	} else {
		line(pdf, "Dates", fmt.Sprintf("%s to %s", client.StartDate, client.EndDate))
	}
	line(pdf, "Party", fmt.Sprintf("%d adults, %d children", client.Adults, client.Children))
	line(pdf, "Days", fmt.Sprintf("%d", client.NumberOfDays))
	line(pdf, "Transport", string(client.TransportationMode))
	if it.VehicleClass != "" {
		line(pdf, "Vehicle", string(it.VehicleClass))
	}
	line(pdf, "Season", string(it.Season))
	pdf.Ln(4)
}

func (r *ItineraryPDF) daysSection(pdf *gofpdf.Fpdf, plans []domain.DayPlan, breakdown domain.CostBreakdown, catalog pricing.Catalog) {
	heading(pdf, "Day by day")

	costs := make(map[int]float64, len(breakdown.Days))
	for _, d := range breakdown.Days {
		costs[d.Day] = d.Total
	}

	for _, plan := range plans {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(150, 7, fmt.Sprintf("Day %d", plan.Day), "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, money(costs[plan.Day]), "B", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, entry := range DescribeDay(plan, catalog) {
			pdf.MultiCell(0, 5, "- "+entry, "", "L", false)
		}
		pdf.Ln(2)
	}
	pdf.Ln(4)
}

func (r *ItineraryPDF) totalsSection(pdf *gofpdf.Fpdf, it *domain.Itinerary, breakdown domain.CostBreakdown) {
	heading(pdf, "Price")
	total(pdf, "Hotels", breakdown.Hotel)
	total(pdf, "Sightseeing", breakdown.Sightseeing)
	total(pdf, "Activities", breakdown.Activities)
	total(pdf, "Entry tickets", breakdown.Tickets)
	total(pdf, "Meals", breakdown.Meals)
	total(pdf, "Transportation", breakdown.Transportation)
	total(pdf, "Base cost", it.TotalBaseCost)
	total(pdf, "Markup", it.Markup)
	total(pdf, "Profit margin", it.ProfitMargin)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 8, "Final price ("+it.Currency+")", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, money(it.FinalPrice), "T", 1, "R", false, 0, "")

	if it.SecondaryCurrency != "" && it.ExchangeRate > 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(150, 6, fmt.Sprintf("Approx. in %s at %.4f (display only)", it.SecondaryCurrency, it.ExchangeRate), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, money(pricing.Convert(it.FinalPrice, it.ExchangeRate)), "", 1, "R", false, 0, "")
	}
}

// DescribeDay lists the selected services of a day plan in print order
func DescribeDay(plan domain.DayPlan, catalog pricing.Catalog) []string {
	var out []string
	if plan.Hotel != nil {
		if room, ok := catalog.RoomType(plan.Hotel.HotelID, plan.Hotel.RoomTypeID); ok {
			out = append(out, "Stay: "+room.Name)
		} else {
			out = append(out, "Stay: unavailable")
		}
	}
	for _, id := range plan.SightseeingIDs {
		if s, ok := catalog.Sightseeing(id); ok {
			out = append(out, "Sightseeing: "+s.Name)
		} else {
			out = append(out, "Sightseeing: unavailable")
		}
	}
	for _, sel := range plan.Activities {
		if opt, ok := catalog.ActivityOption(sel.ActivityID, sel.OptionID); ok {
			out = append(out, "Activity: "+opt.Name)
		} else {
			out = append(out, "Activity: unavailable")
		}
	}
	for _, id := range plan.TicketIDs {
		if t, ok := catalog.EntryTicket(id); ok {
			out = append(out, "Ticket: "+t.Name)
		} else {
			out = append(out, "Ticket: unavailable")
		}
	}
	for _, id := range plan.MealIDs {
		if m, ok := catalog.Meal(id); ok {
			out = append(out, fmt.Sprintf("Meal: %s at %s", m.Type, m.Place))
		} else {
			out = append(out, "Meal: unavailable")
		}
	}
	return out
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, text)
	pdf.Ln(9)
}

func line(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func total(pdf *gofpdf.Fpdf, label string, amount float64) {
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(150, 6, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, money(amount), "", 1, "R", false, 0, "")
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
