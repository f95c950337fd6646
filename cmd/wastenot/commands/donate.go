package commands

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vbonduro/wastenot/internal/domain"
)

func newDonateCommand(a *app) *cobra.Command {
	var (
		input     domain.DonationInput
		imagePath string
	)

	cmd := &cobra.Command{
		Use:   "donate",
		Short: "List food for donation",
		Long: `List food for donation.

With --image the photo is analyzed first and the suggested food type,
description and quantity fill in any field not given on the command line.`,
		Example: `  wastenot donate --food-type Soup --description "Lentil soup" --quantity "6 jars" --location "Community Hall"
  wastenot donate --image soup.jpg --location "Community Hall"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, cleanup, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if imagePath != "" {
				imageData, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("failed to read image: %w", err)
				}
				mimeType := http.DetectContentType(imageData)
				if !strings.HasPrefix(mimeType, "image/") {
					return fmt.Errorf("%s is not an image (%s)", imagePath, mimeType)
				}

				analysis, err := backend.AnalyzeFood(cmd.Context(), imageData, mimeType)
				if err != nil {
					return err
				}
				input = applyAnalysis(input, analysis)
			}

			donation, err := backend.CreateDonation(cmd.Context(), input)
			if err != nil {
				return err
			}

			if a.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), donation)
			}
			return writeDonation(cmd.OutOrStdout(), donation)
		},
	}

	cmd.Flags().StringVar(&input.FoodType, "food-type", "", "kind of food, e.g. \"Soup\"")
	cmd.Flags().StringVar(&input.Description, "description", "", "short description")
	cmd.Flags().StringVar(&input.Quantity, "quantity", "", "free-text quantity, e.g. \"4 servings\"")
	cmd.Flags().StringVar(&input.Location, "location", "", "pickup location")
	cmd.Flags().StringVar(&input.Photo, "photo", "", "photo URL")
	cmd.Flags().StringVar(&imagePath, "image", "", "photo to analyze and attach")

	return cmd
}

// applyAnalysis fills the fields the donor left empty from an analysis.
func applyAnalysis(input domain.DonationInput, analysis *domain.FoodAnalysis) domain.DonationInput {
	if input.FoodType == "" {
		input.FoodType = analysis.FoodType
	}
	if input.Description == "" {
		input.Description = analysis.Description
	}
	if input.Quantity == "" {
		input.Quantity = analysis.Quantity
	}
	if input.Photo == "" {
		input.Photo = analysis.Photo
	}
	return input
}
