package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/vbonduro/wastenot/internal/domain"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeDonations(w io.Writer, donations []domain.Donation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFOOD\tQUANTITY\tLOCATION\tSTATUS\tCREATED")
	for _, d := range donations {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.FoodType, d.Quantity, d.Location, status(d), d.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func writeDonation(w io.Writer, d *domain.Donation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", d.ID)
	fmt.Fprintf(tw, "Food:\t%s\n", d.FoodType)
	fmt.Fprintf(tw, "Description:\t%s\n", d.Description)
	fmt.Fprintf(tw, "Quantity:\t%s\n", d.Quantity)
	fmt.Fprintf(tw, "Location:\t%s\n", d.Location)
	if d.Photo != "" {
		fmt.Fprintf(tw, "Photo:\t%s\n", d.Photo)
	}
	fmt.Fprintf(tw, "Status:\t%s\n", status(*d))
	fmt.Fprintf(tw, "Created:\t%s\n", d.CreatedAt.Local().Format(time.DateTime))
	if d.ClaimedAt != nil {
		fmt.Fprintf(tw, "Claimed:\t%s\n", d.ClaimedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func writeProfile(w io.Writer, p *domain.Profile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Type:\t%s\n", p.Type)
	fmt.Fprintf(tw, "Joined:\t%s\n", p.JoinDate)
	fmt.Fprintf(tw, "Meals saved:\t%d\n", p.MealsSaved)
	fmt.Fprintf(tw, "Donations made:\t%d\n", p.DonationsMade)
	fmt.Fprintf(tw, "People helped:\t%d\n", p.PeopleHelped)
	fmt.Fprintf(tw, "Carbon reduced:\t%.1f kg\n", p.CarbonReduced)
	return tw.Flush()
}

func status(d domain.Donation) string {
	if d.Claimed {
		return "claimed"
	}
	return "available"
}
