package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/internship-hub/placement-api/lifecycle"
	"github.com/internship-hub/placement-api/model"
	"github.com/internship-hub/placement-api/utils/auth"
)

// RunSeeds populates demo accounts and a handful of sample requests so a
// fresh install has something to show on the dashboard. Safe to run twice:
// users are matched by email and requests are only inserted into an empty
// table.
func RunSeeds(db *gorm.DB) error {
	if err := seedUsers(db); err != nil {
		return err
	}
	return seedRequests(db)
}

type seedUser struct {
	Email      string
	Name       string
	Role       lifecycle.Role
	Department string
	StudentID  string
	Password   string
}

func demoUsers() []seedUser {
	return []seedUser{
		{Email: "somsak.student@university.ac.th", Name: "Somsak Jaidee", Role: lifecycle.RoleStudent, Department: "Computer Science", StudentID: "65012345", Password: "student-demo-1"},
		{Email: "pranee.student@university.ac.th", Name: "Pranee Suksan", Role: lifecycle.RoleStudent, Department: "Computer Science", StudentID: "65054321", Password: "student-demo-2"},
		{Email: "wichai.student@university.ac.th", Name: "Wichai Thongdee", Role: lifecycle.RoleStudent, Department: "Business Administration", StudentID: "64011111", Password: "student-demo-3"},
		{Email: "advisor.cs@university.ac.th", Name: "Dr. Anong Rattana", Role: lifecycle.RoleAdvisor, Department: "Computer Science", Password: "advisor-demo-1"},
		{Email: "advisor.biz@university.ac.th", Name: "Dr. Prasert Wong", Role: lifecycle.RoleAdvisor, Department: "Business Administration", Password: "advisor-demo-2"},
	}
}

func seedUsers(db *gorm.DB) error {
	for _, su := range demoUsers() {
		if err := upsertUser(db, su); err != nil {
			return fmt.Errorf("seed user %s: %w", su.Email, err)
		}
	}

	// Admin comes from the environment so demo credentials never grant
	// admin access by accident.
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL / ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	return upsertUser(db, seedUser{
		Email:    adminEmail,
		Name:     "Placement Admin",
		Role:     lifecycle.RoleAdmin,
		Password: adminPassword,
	})
}

func upsertUser(db *gorm.DB, su seedUser) error {
	var existing model.User
	err := db.Where("email = ?", su.Email).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := auth.HashPassword(su.Password)
	if err != nil {
		return err
	}

	user := model.User{
		Email:        su.Email,
		PasswordHash: hash,
		Name:         su.Name,
		Role:         string(su.Role),
		Department:   su.Department,
		StudentID:    su.StudentID,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	log.Printf("Created %s user %s", su.Role, su.Email)
	return nil
}

func seedRequests(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.InternshipRequest{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Requests table already has %d rows, skipping sample requests", count)
		return nil
	}

	samples := []model.InternshipRequest{
		{
			StudentID:   "65012345",
			StudentName: "Somsak Jaidee",
			Department:  "Computer Science",
			Company:     "Siam Software Co., Ltd.",
			Position:    "Backend Developer Intern",
			ContactName: "Khun Niran",
			StartDate:   "2026-06-01",
			EndDate:     "2026-08-31",
			Status:      lifecycle.StatusSubmitted,
		},
		{
			StudentID:   "65054321",
			StudentName: "Pranee Suksan",
			Department:  "Computer Science",
			Company:     "Bangkok Data Labs",
			Position:    "Data Engineering Intern",
			StartDate:   "2026-06-15",
			EndDate:     "2026-09-15",
			Status:      lifecycle.StatusSubmitted,
		},
		{
			StudentID:   "64011111",
			StudentName: "Wichai Thongdee",
			Department:  "Business Administration",
			Company:     "Thai Commerce Group",
			Position:    "Marketing Intern",
			StartDate:   "2026-06-01",
			EndDate:     "2026-08-31",
			Status:      lifecycle.StatusSubmitted,
		},
	}

	for i := range samples {
		if err := db.Create(&samples[i]).Error; err != nil {
			return fmt.Errorf("seed request for %s: %w", samples[i].StudentID, err)
		}
	}
	log.Printf("Created %d sample requests", len(samples))
	return nil
}
