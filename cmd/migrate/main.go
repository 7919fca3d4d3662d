package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"interview-practice-be/internal/model"
	"interview-practice-be/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	// gen_random_uuid() backs the record id default.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	log.Println("Step 2: Running AutoMigrate...")
	if err := db.AutoMigrate(&model.InterviewRecord{}); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	log.Println("Step 3: Creating indexes...")
	indexSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_interview_records_completed_at ON interview_records (completed_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_interview_records_score ON interview_records (overall_score);`,
	}
	for _, sql := range indexSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to create index: %v", err)
		}
	}

	log.Println("Migration completed successfully")
}
