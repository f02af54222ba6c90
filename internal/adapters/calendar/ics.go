package calendar

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/acrylic/tracker/internal/domain/entities"
)

const productID = "-//Acrylic//Assignment Tracker//EN"

// Build renders assignments as an iCalendar feed, one zero-length event
// at each due time.
func Build(assignments []entities.Assignment, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, a := range assignments {
		event := cal.AddEvent(a.ID.String() + "@acrylic")
		event.SetDtStampTime(stamp.UTC())
		event.SetStartAt(a.Due.UTC())
		event.SetEndAt(a.Due.UTC())
		event.SetSummary(fmt.Sprintf("%s: %s", a.CourseName, a.Name))
		if a.Description != "" {
			event.SetDescription(a.Description)
		}
		event.SetProperty(ics.ComponentProperty("URL"), a.URL)
		event.SetProperty(ics.ComponentPropertyCategories, a.CourseName)
	}

	return cal
}

// WriteICS writes the feed for assignments to w
func WriteICS(w io.Writer, assignments []entities.Assignment, stamp time.Time) error {
	if _, err := io.WriteString(w, Build(assignments, stamp).Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}
