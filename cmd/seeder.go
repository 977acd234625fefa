package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/auth"
	"github.com/frahmantamala/hrms/internal/core/datamodel"
	leavedm "github.com/frahmantamala/hrms/internal/core/datamodel/leave"
	"github.com/frahmantamala/hrms/internal/core/mongodb"
	"github.com/frahmantamala/hrms/internal/holiday"
	"github.com/frahmantamala/hrms/internal/user"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	clearData bool
	seedFile  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed leave types, holidays and an initial org chart from a YAML fixture.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
	seedCmd.Flags().StringVar(&seedFile, "file", "db/seed/seed.yml", "YAML fixture to load")
}

type SeedFixture struct {
	LeaveTypes []struct {
		Code        string `yaml:"code"`
		Name        string `yaml:"name"`
		AnnualQuota int    `yaml:"annual_quota"`
	} `yaml:"leave_types"`
	Holidays []struct {
		Date string `yaml:"date"`
		Name string `yaml:"name"`
	} `yaml:"holidays"`
	// Users are created in order; manager refers to the email of an earlier entry.
	Users []struct {
		Email        string `yaml:"email"`
		Name         string `yaml:"name"`
		Password     string `yaml:"password"`
		Role         string `yaml:"role"`
		Department   string `yaml:"department"`
		Designation  string `yaml:"designation"`
		WorkLocation string `yaml:"work_location"`
		Manager      string `yaml:"manager"`
	} `yaml:"users"`
}

func readFixture(path string) (*SeedFixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f SeedFixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &f, nil
}

func runSeed(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, lg, err := setup()
	if err != nil {
		return err
	}
	fixture, err := readFixture(seedFile)
	if err != nil {
		return err
	}

	app, err := newApp(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	if clearData {
		if err := clearStorage(ctx, app.Storage); err != nil {
			return err
		}
		lg.Info("existing data cleared")
	}

	for _, lt := range fixture.LeaveTypes {
		if err := seedLeaveType(ctx, app.Storage, leavedm.Type{Code: lt.Code, Name: lt.Name, AnnualQuota: lt.AnnualQuota}); err != nil {
			return fmt.Errorf("leave type %s: %w", lt.Code, err)
		}
	}
	lg.Info("leave types seeded", "count", len(fixture.LeaveTypes))

	for _, h := range fixture.Holidays {
		_, err := app.Holidays.Create(ctx, holiday.CreateDTO{Name: h.Name, HolidayDate: h.Date})
		if err != nil && !errors.Is(err, holiday.ErrHolidayExists) {
			return fmt.Errorf("holiday %s: %w", h.Date, err)
		}
	}
	lg.Info("holidays seeded", "count", len(fixture.Holidays))

	seeder := &auth.Identity{Role: auth.RoleAdmin}
	employees := map[string]int64{}
	for _, u := range fixture.Users {
		dto := user.CreateUserDTO{
			Email:        u.Email,
			Name:         u.Name,
			Password:     u.Password,
			Role:         u.Role,
			Department:   u.Department,
			Designation:  u.Designation,
			WorkLocation: u.WorkLocation,
		}
		if u.Manager != "" {
			if id, ok := employees[u.Manager]; ok {
				dto.ManagerID = &id
			} else {
				lg.Warn("manager not seeded in this run, leaving unassigned", "email", u.Email, "manager", u.Manager)
			}
		}

		created, err := app.Users.Create(ctx, seeder, dto)
		if errors.Is(err, internal.ErrDuplicateEmail) {
			lg.Info("user already exists", "email", u.Email)
			continue
		}
		if err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		if created.EmployeeID != nil {
			employees[u.Email] = *created.EmployeeID
		}
		lg.Info("seeded user", "email", u.Email, "role", u.Role)
	}
	return nil
}

func seedLeaveType(ctx context.Context, st *Storage, t leavedm.Type) error {
	if st.MongoD != nil {
		coll := st.MongoD.Collection(mongodb.CollectionLeaveTypes)
		n, err := coll.CountDocuments(ctx, bson.D{{Key: "code", Value: t.Code}})
		if err != nil || n > 0 {
			return err
		}
		id, err := mongodb.NextID(ctx, st.MongoD, mongodb.CollectionLeaveTypes)
		if err != nil {
			return err
		}
		_, err = coll.UpdateOne(ctx,
			bson.D{{Key: "code", Value: t.Code}},
			bson.D{{Key: "$setOnInsert", Value: mongodb.LeaveTypeDocument{ID: id, Code: t.Code, Name: t.Name, AnnualQuota: t.AnnualQuota}}},
			options.UpdateOne().SetUpsert(true))
		return err
	}
	return st.Gorm.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&t).Error
}

func clearStorage(ctx context.Context, st *Storage) error {
	if st.MongoD != nil {
		if err := st.MongoD.Drop(ctx); err != nil {
			return err
		}
		return mongodb.EnsureIndexes(ctx, st.MongoD)
	}
	models := datamodel.Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := st.Gorm.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", models[i], err)
		}
	}
	return nil
}
