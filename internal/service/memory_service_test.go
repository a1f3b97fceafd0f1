package service

import (
	"strings"
	"testing"

	"github.com/hyppocampe/internal/db"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMemoryTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.MemorySection{}, &db.MemorySectionField{}, &db.MemoryItem{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Livres", "livres"},
		{"  Vins  Rouges  ", "vins-rouges"},
		{"Cafés & Thés!", "cafs-ths"},
		{"Jeux   de   société", "jeux-de-socit"},
		{"Restos_2024", "restos_2024"},
	}

	for _, tc := range cases {
		got := Slugify(tc.name)
		if got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.name, got, tc.want)
		}
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
			t.Errorf("Slugify(%q) has leading/trailing hyphen: %q", tc.name, got)
		}
		if strings.Contains(got, "--") {
			t.Errorf("Slugify(%q) has duplicate hyphens: %q", tc.name, got)
		}
	}
}

func TestFieldKey(t *testing.T) {
	if got := FieldKey("  Année de sortie "); got != "année_de_sortie" {
		t.Fatalf("unexpected field key: %q", got)
	}
}

func TestMemoryServiceCreateSection(t *testing.T) {
	cleanup := setupMemoryTestDB(t)
	defer cleanup()

	svc := NewMemoryService(db.DB, nil)

	section, err := svc.CreateSection(1, SectionInput{
		Name:        "Vins Rouges",
		FieldLabels: []string{"Région", "Millésime", "  ", ""},
		AllowImage:  true,
	})
	if err != nil {
		t.Fatalf("CreateSection returned error: %v", err)
	}

	if section.Slug != "vins-rouges" {
		t.Fatalf("unexpected slug: %s", section.Slug)
	}
	if section.SearchTemplate != "${title}" {
		t.Fatalf("expected default template, got %q", section.SearchTemplate)
	}

	detail, err := svc.SectionBySlug(1, "vins-rouges")
	if err != nil {
		t.Fatalf("SectionBySlug returned error: %v", err)
	}
	if len(detail.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(detail.Fields))
	}

	// 同一用户下 slug 冲突被拒绝
	if _, err := svc.CreateSection(1, SectionInput{Name: "Vins  Rouges"}); err != ErrSectionSlugTaken {
		t.Fatalf("expected ErrSectionSlugTaken, got %v", err)
	}

	// 其他用户可以复用同一 slug
	if _, err := svc.CreateSection(2, SectionInput{Name: "Vins Rouges"}); err != nil {
		t.Fatalf("expected other user to reuse slug, got %v", err)
	}
}

func TestMemoryServiceItems(t *testing.T) {
	cleanup := setupMemoryTestDB(t)
	defer cleanup()

	svc := NewMemoryService(db.DB, nil)

	section, err := svc.CreateSection(1, SectionInput{Name: "Films", AllowImage: false})
	if err != nil {
		t.Fatalf("failed to create section: %v", err)
	}

	rating := 4
	imageURL := "/static/uploads/ignored.png"
	item, err := svc.CreateItem(1, section.ID, ItemInput{
		Title:     "Dune",
		Rating:    &rating,
		ImageURL:  &imageURL,
		ExtraData: map[string]string{"realisateur": "Villeneuve"},
	})
	if err != nil {
		t.Fatalf("CreateItem returned error: %v", err)
	}

	// 分区不允许图片时忽略 image_url
	if item.ImageURL != nil {
		t.Fatal("expected image URL to be dropped for no-image section")
	}

	bad := 6
	if _, err := svc.CreateItem(1, section.ID, ItemInput{Title: "x", Rating: &bad}); err != ErrItemRatingInvalid {
		t.Fatalf("expected ErrItemRatingInvalid, got %v", err)
	}

	if err := svc.DeleteItem(2, item.ID); err != ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound for other user, got %v", err)
	}
	if err := svc.DeleteItem(1, item.ID); err != nil {
		t.Fatalf("DeleteItem returned error: %v", err)
	}
}

func TestMemoryServiceDeleteSectionCascades(t *testing.T) {
	cleanup := setupMemoryTestDB(t)
	defer cleanup()

	svc := NewMemoryService(db.DB, nil)

	section, err := svc.CreateSection(1, SectionInput{
		Name:        "Restaurants",
		FieldLabels: []string{"Ville"},
		AllowImage:  true,
	})
	if err != nil {
		t.Fatalf("failed to create section: %v", err)
	}

	if _, err := svc.CreateItem(1, section.ID, ItemInput{Title: "Chez Paul"}); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	if err := svc.DeleteSection(1, section.ID); err != nil {
		t.Fatalf("DeleteSection returned error: %v", err)
	}

	var fields int64
	db.DB.Model(&db.MemorySectionField{}).Where("section_id = ?", section.ID).Count(&fields)
	if fields != 0 {
		t.Fatalf("expected fields to be removed, got %d", fields)
	}

	var items int64
	db.DB.Model(&db.MemoryItem{}).Where("section_id = ?", section.ID).Count(&items)
	if items != 0 {
		t.Fatalf("expected items to be removed, got %d", items)
	}

	// 删除后可以重建同名分区
	if _, err := svc.CreateSection(1, SectionInput{Name: "Restaurants"}); err != nil {
		t.Fatalf("expected slug to be reusable after delete, got %v", err)
	}
}

func TestMemoryServiceResetMemory(t *testing.T) {
	cleanup := setupMemoryTestDB(t)
	defer cleanup()

	svc := NewMemoryService(db.DB, nil)

	section, err := svc.CreateSection(1, SectionInput{Name: "Livres", FieldLabels: []string{"Auteur"}})
	if err != nil {
		t.Fatalf("failed to create section: %v", err)
	}
	if _, err := svc.CreateItem(1, section.ID, ItemInput{Title: "L'Étranger"}); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	otherSection, err := svc.CreateSection(2, SectionInput{Name: "Livres"})
	if err != nil {
		t.Fatalf("failed to create other user's section: %v", err)
	}

	if err := svc.ResetMemory(1); err != nil {
		t.Fatalf("ResetMemory returned error: %v", err)
	}

	sections, err := svc.ListSections(1)
	if err != nil {
		t.Fatalf("ListSections returned error: %v", err)
	}
	if len(sections) != 0 {
		t.Fatalf("expected no sections after reset, got %d", len(sections))
	}

	// 其他用户的数据不受影响
	if _, err := svc.SectionBySlug(2, otherSection.Slug); err != nil {
		t.Fatalf("expected other user's section to survive, got %v", err)
	}
}

func TestBuildSearchURL(t *testing.T) {
	section := db.MemorySection{SearchTemplate: "${title} ${region} avis ${region}"}
	item := db.MemoryItem{
		Title:     "Château Margaux",
		ExtraData: datatypes.JSONMap{"region": "Bordeaux"},
	}

	got := BuildSearchURL(section, item)
	want := "https://www.google.com/search?q=" +
		"Ch%C3%A2teau+Margaux+Bordeaux+avis+Bordeaux"
	if got != want {
		t.Fatalf("BuildSearchURL = %q, want %q", got, want)
	}
}

func TestBuildSearchURLKeepsUnknownPlaceholders(t *testing.T) {
	section := db.MemorySection{SearchTemplate: "${title} ${missing}"}
	item := db.MemoryItem{Title: "Dune"}

	got := BuildSearchURL(section, item)
	want := "https://www.google.com/search?q=Dune+%24%7Bmissing%7D"
	if got != want {
		t.Fatalf("BuildSearchURL = %q, want %q", got, want)
	}
}

func TestBuildSearchURLEmptyTemplate(t *testing.T) {
	if got := BuildSearchURL(db.MemorySection{}, db.MemoryItem{Title: "x"}); got != "" {
		t.Fatalf("expected empty URL for empty template, got %q", got)
	}
}

func TestRenderNotes(t *testing.T) {
	html, err := RenderNotes("**bon** <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("RenderNotes returned error: %v", err)
	}
	if !strings.Contains(html, "<strong>bon</strong>") {
		t.Fatalf("expected markdown to render, got %q", html)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected script tags to be sanitized, got %q", html)
	}

	empty, err := RenderNotes("   ")
	if err != nil {
		t.Fatalf("RenderNotes returned error: %v", err)
	}
	if empty != "" {
		t.Fatalf("expected empty render, got %q", empty)
	}
}
