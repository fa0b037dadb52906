package calendar

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// Card fields recognized by ExtractTripFromCard.
const (
	FieldDestination = "destination"
	FieldDate        = "date"
	FieldTime        = "time"
	FieldDescription = "description"
	FieldCost        = "cost"
	FieldSeats       = "seats"
)

// ExtractTripFromCard reads a trip out of a rendered trip card. Each field
// is looked up in order:
//  1. an element marked data-field="<name>" inside the card;
//  2. a data-<name> attribute on the card's root element;
//  3. position: the first h1-h4 for the destination, the first <time> for
//     the date and the second <time> for the time of day;
//  4. nothing, leaving the field to the trip defaults applied by SyncTrip.
//
// Markup that cannot be parsed yields an empty trip, never an error.
func ExtractTripFromCard(markup string) domain.Trip {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return domain.Trip{}
	}
	root := cardRoot(doc)
	if root == nil {
		return domain.Trip{}
	}
	times := findAll(root, func(n *html.Node) bool { return n.DataAtom == atom.Time })

	lookup := func(name string) string {
		if n := find(root, func(n *html.Node) bool { return attr(n, "data-field") == name }); n != nil {
			if v := firstNonEmpty(attr(n, "datetime"), attr(n, "data-value"), text(n)); v != "" {
				return v
			}
		}
		return strings.TrimSpace(attr(root, "data-"+name))
	}

	var t domain.Trip
	t.ID = strings.TrimSpace(attr(root, "data-id"))

	t.Destination = lookup(FieldDestination)
	if t.Destination == "" {
		if h := find(root, isHeading); h != nil {
			t.Destination = text(h)
		}
	}

	t.Date = NormalizeDate(lookup(FieldDate))
	if t.Date == "" && len(times) > 0 {
		t.Date = NormalizeDate(firstNonEmpty(attr(times[0], "datetime"), text(times[0])))
	}

	t.Time = NormalizeClock(lookup(FieldTime))
	if t.Time == "" && len(times) > 1 {
		t.Time = NormalizeClock(firstNonEmpty(attr(times[1], "datetime"), text(times[1])))
	}

	t.Description = lookup(FieldDescription)
	if v := lookup(FieldCost); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimLeft(strings.ReplaceAll(v, ",", ""), "$ "), 64); err == nil && f >= 0 {
			t.CostPerPerson = f
		}
	}
	if v := lookup(FieldSeats); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			t.TotalSeats = n
			t.AvailableSeats = n
		}
	}
	return t
}

// SyncTripCard extracts a trip from card markup and places it on the calendar.
func (b *Bridge) SyncTripCard(ctx context.Context, markup string) (domain.CalendarEvent, bool) {
	return b.save(ctx, b.TripEvent(ExtractTripFromCard(markup)))
}

// ---- tree helpers ----------------------------------------------------------

// cardRoot is the first element inside <body>.
func cardRoot(doc *html.Node) *html.Node {
	body := find(doc, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	if body == nil {
		return nil
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func isHeading(n *html.Node) bool {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4:
		return true
	}
	return false
}

// find returns the first element in document order (n included) matching pred.
func find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := find(c, pred); m != nil {
			return m
		}
	}
	return nil
}

func findAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// text is the whitespace-collapsed text content of n.
func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
