package domain

import "time"

// DonationInput carries the donor-supplied fields of a new donation.
type DonationInput struct {
	FoodType    string `json:"foodType" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
	Quantity    string `json:"quantity" validate:"required,max=200"`
	Location    string `json:"location" validate:"required,max=500"`
	Photo       string `json:"photo,omitempty" validate:"omitempty,max=2000"`
}

type Donation struct {
	ID          string     `json:"id"`
	FoodType    string     `json:"foodType"`
	Description string     `json:"description"`
	Quantity    string     `json:"quantity"`
	Location    string     `json:"location"`
	Photo       string     `json:"photo,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Claimed     bool       `json:"claimed,omitempty"`
	ClaimedAt   *time.Time `json:"claimedAt,omitempty"`
}

// DonationFilter narrows a donation listing. A nil Claimed matches both states.
type DonationFilter struct {
	Claimed *bool
	Query   string
}

type Profile struct {
	Name          string  `json:"name" validate:"required,max=200"`
	Type          string  `json:"type" validate:"required,max=200"`
	JoinDate      string  `json:"joinDate" validate:"required,max=100"`
	MealsSaved    int     `json:"mealsSaved" validate:"gte=0"`
	DonationsMade int     `json:"donationsMade" validate:"gte=0"`
	PeopleHelped  int     `json:"peopleHelped" validate:"gte=0"`
	CarbonReduced float64 `json:"carbonReduced" validate:"gte=0"`
}

// DefaultProfile returns the baseline profile shown before anything has been
// persisted.
func DefaultProfile() Profile {
	return Profile{
		Name:          "Food Hero",
		Type:          "Community Donor",
		JoinDate:      "Oct 2024",
		MealsSaved:    47,
		DonationsMade: 12,
		PeopleHelped:  8,
		CarbonReduced: 23.5,
	}
}

// ProfileDetails is a partial profile edit. Nil fields are left unchanged and
// the impact counters are never touched.
type ProfileDetails struct {
	Name     *string `json:"name,omitempty" validate:"omitnil,required,max=200"`
	Type     *string `json:"type,omitempty" validate:"omitnil,required,max=200"`
	JoinDate *string `json:"joinDate,omitempty" validate:"omitnil,required,max=100"`
}

func (d ProfileDetails) Apply(p *Profile) {
	if d.Name != nil {
		p.Name = *d.Name
	}
	if d.Type != nil {
		p.Type = *d.Type
	}
	if d.JoinDate != nil {
		p.JoinDate = *d.JoinDate
	}
}

// FoodAnalysis is the suggested listing produced from a food photo.
type FoodAnalysis struct {
	FoodType    string `json:"foodType"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Photo       string `json:"photo,omitempty"`
}
