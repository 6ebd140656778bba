package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/accounts"
	"github.com/xelth-com/huissierpro/internal/ai"
	"github.com/xelth-com/huissierpro/internal/cache"
	"github.com/xelth-com/huissierpro/internal/fees"
	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/remote"
	"github.com/xelth-com/huissierpro/internal/repository"
	"github.com/xelth-com/huissierpro/internal/utils"
)

// demoFacts are the field notes the demo acts are drafted from.
var demoFacts = []struct {
	category models.Category
	facts    string
	status   models.Status
}{
	{models.CategorySommationPayer, "REQUÉRANT: Banque Commerciale du Congo\nDESTINATAIRE: Mme Clarisse MABIALA\nNOTES DE TERRAIN: loyers impayés de 250.000 FCFA", models.StatusValidated},
	{models.CategoryConstat, "REQUÉRANT: SCI Les Palmiers\nDESTINATAIRE: M. Didier NGOMA\nNOTES DE TERRAIN: infiltrations au plafond du salon, fissures sur le mur nord", models.StatusDraft},
	{models.CategorySaisieVente, "REQUÉRANT: Ets Kimbembe & Fils\nDESTINATAIRE: M. Paul LOUBAKI\nNOTES DE TERRAIN: créance de 1.500.000 FCFA, mobilier saisi au domicile", models.StatusSigned},
}

func main() {
	dir := flag.String("cache", "./data/cache", "local cache directory")
	studyID := flag.String("study", "etude-okombi", "study to seed")
	password := flag.String("password", "demo-huissier", "password of the demo account")
	force := flag.Bool("force", false, "replace an existing study")
	flag.Parse()

	fmt.Println("🌱 HuissierPro Demo Data Seeder")

	local, err := cache.NewFileStore(*dir)
	if err != nil {
		log.Fatalf("❌ Failed to open cache: %v", err)
	}
	repo := repository.New(local, remote.Offline{}, zap.NewNop())
	ctx := context.Background()

	existing, err := repo.List(ctx, *studyID)
	if err != nil {
		log.Fatalf("❌ Failed to read study: %v", err)
	}
	if len(existing) > 0 && !*force {
		fmt.Printf("⚠️  Study %s already has %d acts. Re-run with -force to replace it.\n", *studyID, len(existing))
		return
	}

	profile := models.Profile{
		Name:         "Jean OKOMBI",
		StudyName:    "Étude de Maître Jean OKOMBI",
		Matricule:    "HUISS-CG-2024-089",
		RCCM:         "CG-BZV-01-2024-B12-00456",
		BankAccount:  "BGFI BANK CONGO - IBAN: CG76 3000 4000 0123 4567 8901 234",
		Jurisdiction: "Tribunal de Grande Instance de Brazzaville",
		Address:      "12 Rue des Avocats, Quartier Centre-Ville",
		City:         "Brazzaville",
		Phone:        "+242 06 123 4567",
		Email:        "etude.okombi@justice.cg",
	}

	gen := ai.NewTemplateGenerator(profile.City)
	now := time.Now().UTC()
	acts := make([]models.Act, 0, len(demoFacts))
	for i, d := range demoFacts {
		content, err := gen.Generate(ctx, d.facts, d.category)
		if err != nil {
			log.Fatalf("❌ Failed to draft %s: %v", d.category, err)
		}
		created := now.Add(-time.Duration(len(demoFacts)-i) * 24 * time.Hour)
		baseline := fees.Initial(d.category)
		acts = append(acts, models.Act{
			ID:               fmt.Sprintf("demo-%d", i+1),
			Title:            fmt.Sprintf("%s - %s", d.category, created.Format(models.DateLayout)),
			Type:             d.category,
			Date:             created.Format(models.DateLayout),
			RawTranscription: d.facts,
			LegalContent:     content,
			Status:           d.status,
			Evidence:         []models.Evidence{},
			Fees:             &baseline,
			UpdatedAt:        created,
		})
	}

	backup := repository.Backup{Profile: profile, Acts: acts, ExportDate: now, Version: repository.BackupVersion}
	if err := repo.Import(ctx, *studyID, backup, true); err != nil {
		log.Fatalf("❌ Import failed: %v", err)
	}
	repo.Wait()
	fmt.Printf("✅ Seeded %d acts into study %s\n", len(acts), *studyID)

	hash, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	user := models.UserAuth{
		Matricule: profile.Matricule,
		Email:     profile.Email,
		Password:  hash,
		Name:      profile.Name,
		StudyID:   *studyID,
	}
	switch err := accounts.NewCacheStore(local).Create(ctx, &user); {
	case err == nil:
		fmt.Printf("✅ Demo account %s created\n", user.Matricule)
	case errors.Is(err, accounts.ErrAccountExists):
		fmt.Printf("ℹ️  Demo account %s already exists\n", user.Matricule)
	case errors.Is(err, accounts.ErrStudyTaken):
		fmt.Printf("ℹ️  Study %s already has an account\n", user.StudyID)
	default:
		log.Fatalf("❌ Failed to create account: %v", err)
	}
}
