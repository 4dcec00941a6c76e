package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/storerate/storerate-backend/config"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/internal/app/service"
	"github.com/storerate/storerate-backend/internal/db"
	"github.com/storerate/storerate-backend/internal/validation"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	usersSheet  = "Users"
	storesSheet = "Stores"
)

// storeRow is a Stores sheet row. OwnerEmail is resolved to a user id at
// import time so it may reference accounts from the Users sheet.
type storeRow struct {
	Line       int
	Name       string
	Email      string
	Address    string
	OwnerEmail string
}

type userRow struct {
	Line  int
	Input service.CreateUserInput
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	users, stores, err := readWorkbook(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Users to import: %d\n", len(users))
	fmt.Printf("Stores to import: %d\n", len(stores))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := validation.Register(); err != nil {
		log.Fatal("Failed to register validation rules:", err)
	}
	userRepo := repository.NewUserRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())

	result := importRows(
		service.NewUserService(userRepo),
		service.NewStoreService(storeRepo, userRepo),
		userRepo,
		users,
		stores,
	)

	fmt.Println("Import completed!")
	fmt.Printf("  Users created: %d\n", result.UsersCreated)
	fmt.Printf("  Stores created: %d\n", result.StoresCreated)
	fmt.Printf("  Skipped rows: %d\n", len(result.Skipped))
	for _, s := range result.Skipped {
		fmt.Printf("    %s\n", s)
	}
}

func readWorkbook(filePath string) ([]userRow, []storeRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	users, err := readUsers(f)
	if err != nil {
		return nil, nil, err
	}
	stores, err := readStores(f)
	if err != nil {
		return nil, nil, err
	}
	if len(users) == 0 && len(stores) == 0 {
		return nil, nil, fmt.Errorf("no data found in XLSX file")
	}
	return users, stores, nil
}

// sheetRows returns the data rows of sheet without its header. A missing
// sheet is not an error.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s rows: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// readUsers reads name, email, password, address, role columns.
func readUsers(f *excelize.File) ([]userRow, error) {
	rows, err := sheetRows(f, usersSheet)
	if err != nil {
		return nil, err
	}

	var users []userRow
	for i, row := range rows {
		if cell(row, 1) == "" {
			continue
		}
		users = append(users, userRow{
			Line: i + 2,
			Input: service.CreateUserInput{
				Name:     cell(row, 0),
				Email:    cell(row, 1),
				Password: cell(row, 2),
				Address:  cell(row, 3),
				Role:     strings.ToLower(cell(row, 4)),
			},
		})
	}
	return users, nil
}

// readStores reads name, email, address, owner_email columns.
func readStores(f *excelize.File) ([]storeRow, error) {
	rows, err := sheetRows(f, storesSheet)
	if err != nil {
		return nil, err
	}

	var stores []storeRow
	for i, row := range rows {
		if cell(row, 1) == "" {
			continue
		}
		stores = append(stores, storeRow{
			Line:       i + 2,
			Name:       cell(row, 0),
			Email:      cell(row, 1),
			Address:    cell(row, 2),
			OwnerEmail: cell(row, 3),
		})
	}
	return stores, nil
}

type importResult struct {
	UsersCreated  int
	StoresCreated int
	Skipped       []string
}

// importRows creates users first so store rows can reference owners created
// in the same workbook. Rows failing validation or uniqueness are skipped.
func importRows(
	userService service.UserService,
	storeService service.StoreService,
	userRepo repository.UserRepository,
	users []userRow,
	stores []storeRow,
) importResult {
	var result importResult

	for _, u := range users {
		if _, err := userService.CreateUser(u.Input); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s row %d (%s): %v", usersSheet, u.Line, u.Input.Email, err))
			continue
		}
		result.UsersCreated++
	}

	for _, s := range stores {
		input := service.CreateStoreInput{Name: s.Name, Email: s.Email, Address: s.Address}
		if s.OwnerEmail != "" {
			owner, err := userRepo.FindByEmail(strings.ToLower(s.OwnerEmail))
			if err != nil {
				reason := err
				if errors.Is(err, gorm.ErrRecordNotFound) {
					reason = fmt.Errorf("owner %s not found", s.OwnerEmail)
				}
				result.Skipped = append(result.Skipped, fmt.Sprintf("%s row %d (%s): %v", storesSheet, s.Line, s.Email, reason))
				continue
			}
			input.OwnerID = &owner.ID
		}

		if _, err := storeService.CreateStore(input); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s row %d (%s): %v", storesSheet, s.Line, s.Email, err))
			continue
		}
		result.StoresCreated++
	}

	return result
}
