package main

import (
	"context"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"cockpityara/internal/database"
	domainprofile "cockpityara/internal/domain/profile"
	"cockpityara/internal/domain/project"
	"cockpityara/internal/repository"
)

// Seeds the local store with a demo profile and a handful of clients so the
// cockpit has something to show on first run.
func main() {
	path := os.Getenv("LOCAL_DATABASE_PATH")
	if path == "" {
		path = "cockpit.db"
	}

	db, err := database.ConnectLocal(path)
	if err != nil {
		log.Fatal("local store open failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM credit_transactions")
	db.Exec("DELETE FROM cockpit_clients")
	db.Exec("DELETE FROM carpenter_profile")

	ctx := context.Background()

	log.Println("Creating profile...")
	profileRepo := repository.NewProfileRepository(db)
	hash, _ := bcrypt.GenerateFromPassword([]byte("oficina123"), bcrypt.DefaultCost)
	if err := profileRepo.Save(ctx, &domainprofile.CarpenterProfile{
		Name:         "Seu Arlindo",
		Workshop:     "Marcenaria Bom Corte",
		PasswordHash: string(hash),
	}); err != nil {
		log.Fatal("profile seed failed:", err)
	}
	if _, err := profileRepo.AddCredits(ctx, 25, "seed"); err != nil {
		log.Fatal("credits seed failed:", err)
	}

	log.Println("Creating clients...")
	localRepo := repository.NewProjectLocalRepository(db)

	seedClients := []struct {
		name   string
		phone  string
		status project.Status
		value  float64
		chat   []string
	}{
		{"Ana Souza", "+55 11 98888-1234", project.StatusProducao, 7400, []string{
			"Quero um armário planejado para a cozinha, 3 metros de parede.",
			"Perfeito! Com MDF naval e ferragens soft-close, fica em torno de R$ 7.400.",
		}},
		{"Carlos Lima", "+55 11 97777-4321", project.StatusLead, 0, []string{
			"Vocês fazem mesa de jantar em madeira de demolição?",
		}},
		{"Dona Beatriz", "+55 19 96666-8765", project.StatusInstalacao, 12900, []string{
			"Como está o cronograma do closet?",
			"Instalação marcada para sexta-feira, das 9h às 17h.",
		}},
	}

	for _, sc := range seedClients {
		rec := project.Project{
			Name:           sc.name,
			Phone:          sc.phone,
			Status:         sc.status,
			EstimatedValue: sc.value,
			Messages: project.MessageList{
				project.NewMessage(project.FromAssistant, project.MessageText, project.WelcomeText, ""),
			},
		}
		for i, text := range sc.chat {
			from := project.FromUser
			if i%2 == 1 {
				from = project.FromAssistant
			}
			rec.Messages = append(rec.Messages, project.NewMessage(from, project.MessageText, text, ""))
		}
		if _, err := localRepo.Add(ctx, &rec); err != nil {
			log.Fatal("client seed failed:", err)
		}
		time.Sleep(10 * time.Millisecond) // distinct updated_at ordering
	}

	log.Println("Seed complete")
}
