package backend

import (
	"context"
	"fmt"

	"hospital-portal/models"
)

var seedDoctors = []models.Doctor{
	{Name: "Dr. Sarah Khan", Specialty: "Cardiology", Diseases: []string{"Hypertension", "Arrhythmia", "Heart Failure"}},
	{Name: "Dr. Daniel Osei", Specialty: "Dermatology", Diseases: []string{"Eczema", "Psoriasis", "Acne"}},
	{Name: "Dr. Mei Lin", Specialty: "Endocrinology", Diseases: []string{"Diabetes", "Thyroid Disorders"}},
	{Name: "Dr. Omar Haddad", Specialty: "Pulmonology", Diseases: []string{"Asthma", "Bronchitis", "COPD"}},
	{Name: "Dr. Ana Ruiz", Specialty: "Neurology", Diseases: []string{"Migraine", "Epilepsy"}},
}

// Seed adds the demo doctors when the store has none.
func Seed(ctx context.Context, repo models.Repository) (int, error) {
	existing, err := repo.ListDoctors(ctx)
	if err != nil {
		return 0, fmt.Errorf("list doctors: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i := range seedDoctors {
		doc := seedDoctors[i]
		doc.Diseases = append([]string(nil), doc.Diseases...)
		if err := repo.CreateDoctor(ctx, &doc); err != nil {
			return i, fmt.Errorf("seed doctor %q: %w", doc.Name, err)
		}
	}
	return len(seedDoctors), nil
}
