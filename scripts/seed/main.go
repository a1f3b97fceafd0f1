package main

import (
	"fmt"
	"log"
	"time"

	"github.com/hyppocampe/internal/db"
	"github.com/hyppocampe/internal/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// 演示数据生成器
func main() {
	if err := db.Init("hyppocampe.db"); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成演示数据...")

	userID := createDemoUser()
	createDemoTasks(userID)
	createDemoMemory(userID)
	createDemoSettings(userID)

	fmt.Println("演示数据生成完成！")
	fmt.Println("用户: fred@controlcenter.com (密码: hippocampe)")
}

// 创建演示用户
func createDemoUser() uint {
	var existing db.User
	if err := db.DB.Where("email = ?", "fred@controlcenter.com").First(&existing).Error; err == nil {
		fmt.Println("用户已存在，跳过创建")
		return existing.ID
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("hippocampe"), bcrypt.DefaultCost)
	user := db.User{
		Email:    "fred@controlcenter.com",
		Password: string(hashed),
	}
	db.DB.Create(&user)

	fmt.Println("✅ 演示用户创建完成")
	return user.ID
}

// 创建演示任务
func createDemoTasks(userID uint) {
	var count int64
	db.DB.Model(&db.Task{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		fmt.Println("任务已存在，跳过创建")
		return
	}

	yesterday := time.Now().AddDate(0, 0, -1)
	tomorrow := time.Now().AddDate(0, 0, 1)

	tasks := []db.Task{
		{UserID: userID, Title: "Préparer la réunion d'équipe", Status: db.TaskStatusTodo, Type: db.TaskTypePro, Deadline: &tomorrow},
		{UserID: userID, Title: "Relancer le client Dupont", Status: db.TaskStatusWaiting, Type: db.TaskTypePro, Deadline: &yesterday},
		{UserID: userID, Title: "Acheter un cadeau pour Léa", Status: db.TaskStatusInProgress, Type: db.TaskTypePerso},
		{UserID: userID, Title: "Renouveler l'assurance habitation", Status: db.TaskStatusTodo, Type: db.TaskTypePerso},
		{UserID: userID, Title: "Archiver les factures 2025", Status: db.TaskStatusDone, Type: db.TaskTypePerso, Archived: true},
	}
	for i := range tasks {
		db.DB.Create(&tasks[i])
	}

	fmt.Println("✅ 演示任务创建完成")
}

// 创建演示记忆分区与条目
func createDemoMemory(userID uint) {
	var count int64
	db.DB.Model(&db.MemorySection{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		fmt.Println("记忆分区已存在，跳过创建")
		return
	}

	section := db.MemorySection{
		UserID:         userID,
		Name:           "Vins",
		Slug:           service.Slugify("Vins"),
		SearchTemplate: "${title} ${region} avis",
		AllowImage:     true,
	}
	if err := db.DB.Create(&section).Error; err != nil {
		log.Printf("创建记忆分区失败: %v", err)
		return
	}

	fields := []db.MemorySectionField{
		{SectionID: section.ID, Label: "Région", FieldKey: service.FieldKey("Région")},
		{SectionID: section.ID, Label: "Millésime", FieldKey: service.FieldKey("Millésime")},
	}
	for i := range fields {
		db.DB.Create(&fields[i])
	}

	rating := 5
	items := []db.MemoryItem{
		{
			SectionID: section.ID,
			UserID:    userID,
			Title:     "Château Margaux",
			Rating:    &rating,
			Notes:     "Dégusté chez **Paul**. À racheter pour les grandes occasions.",
			ExtraData: datatypes.JSONMap{"région": "Bordeaux", "millésime": "2015"},
		},
		{
			SectionID: section.ID,
			UserID:    userID,
			Title:     "Domaine de la Janasse",
			ExtraData: datatypes.JSONMap{"région": "Châteauneuf-du-Pape", "millésime": "2019"},
		},
	}
	for i := range items {
		db.DB.Create(&items[i])
	}

	fmt.Println("✅ 演示记忆数据创建完成")
}

// 创建演示通知设置与界面偏好
func createDemoSettings(userID uint) {
	var count int64
	db.DB.Model(&db.NotificationSetting{}).Where("user_id = ?", userID).Count(&count)
	if count == 0 {
		db.DB.Create(&db.NotificationSetting{
			UserID:           userID,
			DailySummary:     true,
			DeadlineReminder: true,
			SoundEnabled:     true,
			SummaryHour:      8,
		})
	}

	db.DB.Model(&db.UserPreference{}).Where("user_id = ?", userID).Count(&count)
	if count == 0 {
		db.DB.Create(&db.UserPreference{
			UserID: userID,
			Mode:   db.PreferenceModeSystem,
			Style:  "apple",
		})
	}

	fmt.Println("✅ 演示设置创建完成")
}
