package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusforms/internal/config"
	"campusforms/internal/model"
	"campusforms/internal/repository"
	"campusforms/internal/service"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	formRepo := repository.NewFormRepo(db)
	groupRepo := repository.NewGroupRepo(db)

	closesAt := time.Now().Add(14 * 24 * time.Hour)
	form := &model.Form{
		OwnerID:   "staff_seed",
		Title:     "Project Group Registration",
		Published: true,
		ClosesAt:  &closesAt,
		Questions: []model.Question{
			{ID: "welcome", Order: 0, Type: model.QuestionStartScreen, Title: "Semester Project Registration"},
			{ID: "name", Order: 1, Type: model.QuestionShortText, Title: "Your full name", Required: true, MinLength: 2},
			{ID: "email", Order: 2, Type: model.QuestionEmail, Title: "Your student email", Required: true},
			{ID: "track", Order: 3, Type: model.QuestionMultipleChoice, Title: "Which track are you on?", Required: true,
				Options: []model.Option{
					{Label: "Software Engineering", Value: "se"},
					{Label: "Data Science", Value: "ds"},
				}},
			{ID: "ds_tools", Order: 4, Type: model.QuestionCheckboxes, Title: "Which tools have you used?",
				MaxSelect: 3,
				Options: []model.Option{
					{Label: "Pandas", Value: "pandas"},
					{Label: "Spark", Value: "spark"},
					{Label: "dbt", Value: "dbt"},
					{Label: "Airflow", Value: "airflow"},
				},
				ConditionalRules: []model.Rule{
					{TargetIndex: 3, Operator: "equals", Operand: "ds", Action: "show"},
				}},
			{ID: "group", Order: 5, Type: model.QuestionGroupSelection, Title: "Pick your project group",
				Required: true, MinGroupSize: 3, MaxGroupSize: 5},
			{ID: "thanks", Order: 6, Type: model.QuestionEndScreen, Title: "You are registered!"},
		},
	}

	service.NormalizeForm(form)
	id, err := formRepo.Create(ctx, form)
	if err != nil {
		log.Fatalf("Failed to seed form: %v", err)
	}

	roster := make([]model.RosterStudent, 0, 12)
	for i := 1; i <= 12; i++ {
		roster = append(roster, model.RosterStudent{
			FormID: id,
			Name:   fmt.Sprintf("Student %02d", i),
			Email:  fmt.Sprintf("student%02d@campus.edu", i),
		})
	}
	if err := groupRepo.AddToRoster(ctx, roster); err != nil {
		log.Fatalf("Failed to seed roster: %v", err)
	}

	log.Printf("Seeded form %s with %d roster students", id, len(roster))
}
