package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/attendance"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/course"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/student"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/submission"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/survey"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/user"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/storage/database"
)

var (
	dbOnce sync.Once
	testDB *sqlx.DB
)

// NewTestConfig loads the app config and points it at the test database.
func NewTestConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Server.DisableReqLogs = true
	if !strings.HasSuffix(conf.Database.Name, "_test") {
		conf.Database.Name += "_test"
	}
	core.Conf = conf
	return conf
}

// OpenDB creates and migrates the test database. Meant for TestMain, where no
// *testing.T is around.
func OpenDB() (*sqlx.DB, error) {
	var err error
	dbOnce.Do(func() {
		conf := NewTestConfig()
		if err = database.CreateIfNotExist(conf); err != nil {
			return
		}
		var db *sql.DB
		if db, err = database.Open(conf); err != nil {
			return
		}
		if err = database.Migrate(db); err != nil {
			return
		}
		testDB = sqlx.NewDb(db, "postgres")
	})
	return testDB, err
}

// PrepareDB opens the test database and truncates all tables.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := OpenDB()
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	ResetDB(t, db)
	return db
}

// ResetDB truncates all tables, resetting serial sequences.
func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(
		`TRUNCATE TABLE users, courses, modules, students, module_registrations,
		 weekly_surveys, assignments, submissions, weekly_attendance
		 RESTART IDENTITY CASCADE`,
	)
	if err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	// postgres stores timestamps at microsecond precision; truncate so the
	// returned struct matches what the API reads back from the DB
	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC().Truncate(time.Microsecond)
	}
	if roles == nil {
		roles = []string{} // roles column is NOT NULL; empty array means "no roles"
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, db *sqlx.DB, id, name string) course.Course {
	t.Helper()

	var crs course.Course
	err := db.Get(
		&crs,
		`INSERT INTO courses (course_id, course_name) VALUES ($1, $2)
		 RETURNING course_id, course_name, total_credits, created_at`,
		id, name,
	)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateStudent(t *testing.T, repo student.Repository, id, firstName, lastName, email, courseID string) student.Student {
	t.Helper()

	std := student.Student{
		StudentID:    id,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		EnrolledYear: null.IntFrom(2024),
	}
	if courseID != "" {
		std.CurrentCourseID = null.StringFrom(courseID)
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateModule(t *testing.T, repo course.Repository, id, courseID, name string) course.Module {
	t.Helper()

	mod := course.Module{
		ModuleID:      id,
		ModuleName:    name,
		DurationWeeks: course.DefaultDurationWeeks,
	}
	if courseID != "" {
		mod.CourseID = null.StringFrom(courseID)
	}
	mod, err := repo.CreateModule(context.Background(), mod)
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return mod
}

func CreateAssignment(t *testing.T, repo course.Repository, id, moduleID, title string, dueDate time.Time) course.Assignment {
	t.Helper()

	asg, err := repo.CreateAssignment(context.Background(), course.Assignment{
		AssignmentID: id,
		ModuleID:     moduleID,
		Title:        title,
		DueDate:      dueDate.Truncate(time.Microsecond),
		MaxScore:     course.DefaultMaxScore,
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}

func CreateRegistration(t *testing.T, repo course.Repository, studentID, moduleID string) course.Registration {
	t.Helper()

	reg, err := repo.CreateRegistration(context.Background(), course.Registration{
		StudentID: studentID,
		ModuleID:  moduleID,
		Status:    course.StatusActive,
	})
	if err != nil {
		t.Fatalf("CreateRegistration() failed: %v", err)
	}
	return reg
}

func CreateSurvey(t *testing.T, repo survey.Repository, registrationID, week, stress int, sleep float64, social int) survey.Survey {
	t.Helper()

	sv, err := repo.CreateSurvey(context.Background(), survey.Survey{
		RegistrationID:        registrationID,
		WeekNumber:            week,
		StressLevel:           null.IntFrom(stress),
		SleepHours:            null.Float64From(sleep),
		SocialConnectionScore: null.IntFrom(social),
	})
	if err != nil {
		t.Fatalf("CreateSurvey() failed: %v", err)
	}
	return sv
}

func CreateAttendance(t *testing.T, repo attendance.Repository, registrationID, week int, classDate time.Time, present bool) attendance.Attendance {
	t.Helper()

	att, err := repo.CreateAttendance(context.Background(), attendance.Attendance{
		RegistrationID: registrationID,
		WeekNumber:     week,
		ClassDate:      classDate,
		IsPresent:      present,
	})
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
	return att
}

func CreateSubmission(t *testing.T, repo submission.Repository, registrationID int, assignmentID string, submittedAt time.Time, grade null.Float64) submission.Submission {
	t.Helper()

	sub, err := repo.CreateSubmission(context.Background(), submission.Submission{
		RegistrationID: registrationID,
		AssignmentID:   assignmentID,
		SubmittedAt:    null.TimeFrom(submittedAt),
		GradeAchieved:  grade,
	})
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}
