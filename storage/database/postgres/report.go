package pgrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core/report"
)

// The reporting queries are fixed-shape aggregates, so they are written as
// plain SQL rather than built with squirrel. Optional narrowing parameters
// are folded into the statements: an empty module ID or a non-positive week
// bound disables its clause.

type reportRepository struct {
	repository
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(exec core.DBExecutor) *reportRepository {
	return &reportRepository{repository{exec: exec}}
}

const riskStatsQuery = `
SELECT s.student_id,
       s.first_name || ' ' || s.last_name AS name,
       s.email,
       COALESCE(att.total_classes, 0) AS total_classes,
       COALESCE(att.classes_attended, 0) AS classes_attended,
       sv.avg_stress, sv.avg_sleep, sv.avg_social,
       g.avg_grade
FROM students s
JOIN (SELECT DISTINCT student_id FROM module_registrations) reg ON reg.student_id = s.student_id
LEFT JOIN (
    SELECT r.student_id,
           COUNT(*) AS total_classes,
           COUNT(*) FILTER (WHERE a.is_present) AS classes_attended
    FROM weekly_attendance a
    JOIN module_registrations r ON r.registration_id = a.registration_id
    GROUP BY r.student_id
) att ON att.student_id = s.student_id
LEFT JOIN (
    SELECT r.student_id,
           AVG(sv.stress_level) AS avg_stress,
           AVG(sv.sleep_hours) AS avg_sleep,
           AVG(sv.social_connection_score) AS avg_social
    FROM weekly_surveys sv
    JOIN module_registrations r ON r.registration_id = sv.registration_id
    GROUP BY r.student_id
) sv ON sv.student_id = s.student_id
LEFT JOIN (
    SELECT r.student_id, AVG(sub.grade_achieved) AS avg_grade
    FROM submissions sub
    JOIN module_registrations r ON r.registration_id = sub.registration_id
    GROUP BY r.student_id
) g ON g.student_id = s.student_id
ORDER BY s.student_id`

func (repo reportRepository) QueryRiskStats(ctx context.Context, exec ...core.DBExecutor) ([]report.RiskStats, error) {
	var stats []report.RiskStats
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &stats, riskStatsQuery); err != nil {
		return nil, errors.Wrap(err, "querying risk stats")
	}
	return stats, nil
}

const latestSurveysQuery = `
SELECT DISTINCT ON (s.student_id)
       s.student_id,
       s.first_name || ' ' || s.last_name AS name,
       s.email, s.enrolled_year,
       sv.stress_level, sv.sleep_hours, sv.week_number, sv.submitted_at
FROM weekly_surveys sv
JOIN module_registrations r ON r.registration_id = sv.registration_id
JOIN students s ON s.student_id = r.student_id
ORDER BY s.student_id, sv.submitted_at DESC, sv.survey_id DESC`

func (repo reportRepository) QueryLatestSurveys(ctx context.Context, exec ...core.DBExecutor) ([]report.EarlyWarningStudent, error) {
	var students []report.EarlyWarningStudent
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &students, latestSurveysQuery); err != nil {
		return nil, errors.Wrap(err, "querying latest surveys")
	}
	return students, nil
}

const latestWeekAveragesQuery = `
SELECT week_number,
       AVG(stress_level) AS avg_stress,
       AVG(sleep_hours) AS avg_sleep
FROM weekly_surveys
GROUP BY week_number
ORDER BY week_number DESC
LIMIT 2`

func (repo reportRepository) QueryLatestWeekAverages(ctx context.Context, exec ...core.DBExecutor) ([]report.WeekAverages, error) {
	var weeks []report.WeekAverages
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &weeks, latestWeekAveragesQuery); err != nil {
		return nil, errors.Wrap(err, "querying week averages")
	}
	return weeks, nil
}

const moduleAcademicStatsQuery = `
SELECT (SELECT COUNT(*) FROM module_registrations r WHERE r.module_id = m.module_id) AS total_students,
       (SELECT COUNT(*) FROM assignments a WHERE a.module_id = m.module_id) AS total_assignments,
       (SELECT AVG(sub.grade_achieved) FROM submissions sub
        JOIN assignments a ON a.assignment_id = sub.assignment_id
        WHERE a.module_id = m.module_id) AS average_grade,
       (SELECT COUNT(*) FROM submissions sub
        JOIN assignments a ON a.assignment_id = sub.assignment_id
        WHERE a.module_id = m.module_id) AS total_submissions,
       (SELECT COUNT(*) FROM weekly_attendance wa
        JOIN module_registrations r ON r.registration_id = wa.registration_id
        WHERE r.module_id = m.module_id) AS attendance_total,
       (SELECT COUNT(*) FROM weekly_attendance wa
        JOIN module_registrations r ON r.registration_id = wa.registration_id
        WHERE r.module_id = m.module_id AND wa.is_present) AS attendance_present
FROM modules m
WHERE m.module_id = $1`

func (repo reportRepository) GetModuleAcademicStats(ctx context.Context, moduleID string, exec ...core.DBExecutor) (report.ModuleAcademicStats, error) {
	var stats report.ModuleAcademicStats
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &stats, moduleAcademicStatsQuery, moduleID); err != nil {
		if err == sql.ErrNoRows {
			return report.ModuleAcademicStats{}, report.ErrModuleNotFound
		}
		return report.ModuleAcademicStats{}, errors.Wrap(err, "querying module academic stats")
	}
	return stats, nil
}

const studentHeaderQuery = `
SELECT s.student_id,
       s.first_name || ' ' || s.last_name AS name,
       s.email, s.enrolled_year,
       s.current_course_id AS course_id,
       c.course_name,
       (SELECT COUNT(*) FROM module_registrations r WHERE r.student_id = s.student_id) AS modules_enrolled
FROM students s
LEFT JOIN courses c ON c.course_id = s.current_course_id
WHERE s.student_id = $1`

func (repo reportRepository) GetStudentHeader(ctx context.Context, studentID string, exec ...core.DBExecutor) (report.StudentHeader, error) {
	var hdr report.StudentHeader
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &hdr, studentHeaderQuery, studentID); err != nil {
		if err == sql.ErrNoRows {
			return report.StudentHeader{}, report.ErrStudentNotFound
		}
		return report.StudentHeader{}, errors.Wrap(err, "querying student header")
	}
	return hdr, nil
}

const studentGradesQuery = `
SELECT sub.assignment_id, sub.grade_achieved, sub.submitted_at, sub.grader_feedback AS feedback
FROM submissions sub
JOIN module_registrations r ON r.registration_id = sub.registration_id
WHERE r.student_id = $1
ORDER BY sub.submission_id`

func (repo reportRepository) QueryStudentGrades(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]report.GradeRow, error) {
	var rows []report.GradeRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, studentGradesQuery, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student grades")
	}
	return rows, nil
}

const studentAttendanceQuery = `
SELECT a.week_number, a.is_present, a.reason_absent, a.class_date
FROM weekly_attendance a
JOIN module_registrations r ON r.registration_id = a.registration_id
WHERE r.student_id = $1
ORDER BY a.week_number, a.attendance_id`

func (repo reportRepository) QueryStudentAttendance(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]report.AttendanceRow, error) {
	var rows []report.AttendanceRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, studentAttendanceQuery, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student attendance")
	}
	return rows, nil
}

const studentAcademicStatsQuery = `
SELECT (SELECT AVG(sub.grade_achieved) FROM submissions sub
        JOIN module_registrations r ON r.registration_id = sub.registration_id
        WHERE r.student_id = $1) AS average_grade,
       (SELECT COUNT(*) FROM submissions sub
        JOIN module_registrations r ON r.registration_id = sub.registration_id
        WHERE r.student_id = $1) AS total_submissions,
       (SELECT COUNT(*) FROM weekly_attendance wa
        JOIN module_registrations r ON r.registration_id = wa.registration_id
        WHERE r.student_id = $1) AS attendance_total,
       (SELECT COUNT(*) FROM weekly_attendance wa
        JOIN module_registrations r ON r.registration_id = wa.registration_id
        WHERE r.student_id = $1 AND wa.is_present) AS attendance_present`

func (repo reportRepository) GetStudentAcademicStats(ctx context.Context, studentID string, exec ...core.DBExecutor) (report.StudentAcademicStats, error) {
	var stats report.StudentAcademicStats
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &stats, studentAcademicStatsQuery, studentID); err != nil {
		return report.StudentAcademicStats{}, errors.Wrap(err, "querying student academic stats")
	}
	return stats, nil
}

const studentSurveysQuery = `
SELECT sv.week_number, sv.stress_level, sv.sleep_hours, sv.social_connection_score
FROM weekly_surveys sv
JOIN module_registrations r ON r.registration_id = sv.registration_id
WHERE r.student_id = $1
ORDER BY sv.week_number, sv.survey_id`

func (repo reportRepository) QueryStudentSurveys(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]report.WellbeingWeek, error) {
	var rows []report.WellbeingWeek
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, studentSurveysQuery, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student surveys")
	}
	return rows, nil
}

const profileStatsQuery = `
SELECT (SELECT AVG(sub.grade_achieved) FROM submissions sub
        JOIN module_registrations r ON r.registration_id = sub.registration_id
        WHERE r.student_id = $1) AS average_grade,
       (SELECT AVG(sv.stress_level) FROM weekly_surveys sv
        JOIN module_registrations r ON r.registration_id = sv.registration_id
        WHERE r.student_id = $1) AS average_stress,
       (SELECT AVG(sv.sleep_hours) FROM weekly_surveys sv
        JOIN module_registrations r ON r.registration_id = sv.registration_id
        WHERE r.student_id = $1) AS average_sleep`

func (repo reportRepository) GetProfileStats(ctx context.Context, studentID string, exec ...core.DBExecutor) (report.ProfileStats, error) {
	var stats report.ProfileStats
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &stats, profileStatsQuery, studentID); err != nil {
		return report.ProfileStats{}, errors.Wrap(err, "querying profile stats")
	}
	return stats, nil
}

const attendanceWeeksQuery = `
SELECT a.week_number,
       COUNT(*) AS total_classes,
       COUNT(*) FILTER (WHERE a.is_present) AS classes_attended
FROM weekly_attendance a
JOIN module_registrations r ON r.registration_id = a.registration_id
WHERE r.student_id = $1
  AND ($2 = '' OR r.module_id = $2)
  AND ($3 <= 0 OR a.week_number >= $3)
  AND ($4 <= 0 OR a.week_number <= $4)
GROUP BY a.week_number
ORDER BY a.week_number`

func (repo reportRepository) QueryAttendanceWeeks(ctx context.Context, studentID, moduleID string, weekStart, weekEnd int, exec ...core.DBExecutor) ([]report.AttendanceWeek, error) {
	var weeks []report.AttendanceWeek
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &weeks, attendanceWeeksQuery, studentID, moduleID, weekStart, weekEnd); err != nil {
		return nil, errors.Wrap(err, "querying attendance weeks")
	}
	return weeks, nil
}

const gradeStatsQuery = `
SELECT COUNT(*) AS total_submissions,
       COUNT(sub.grade_achieved) AS graded_submissions,
       AVG(sub.grade_achieved) AS average_grade,
       MIN(sub.grade_achieved) AS minimum_grade,
       MAX(sub.grade_achieved) AS maximum_grade
FROM submissions sub
JOIN module_registrations r ON r.registration_id = sub.registration_id
WHERE r.student_id = $1
  AND ($2 = '' OR r.module_id = $2)`

func (repo reportRepository) GetGradeStats(ctx context.Context, studentID, moduleID string, exec ...core.DBExecutor) (report.GradeStats, error) {
	var stats report.GradeStats
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &stats, gradeStatsQuery, studentID, moduleID); err != nil {
		return report.GradeStats{}, errors.Wrap(err, "querying grade stats")
	}
	return stats, nil
}

const timingStatsQuery = `
SELECT COUNT(*) FILTER (WHERE sub.submitted_at::date < a.due_date::date) AS early_submissions,
       COUNT(*) FILTER (WHERE sub.submitted_at::date > a.due_date::date) AS late_submissions,
       COUNT(*) FILTER (WHERE sub.submitted_at::date = a.due_date::date) AS on_time_submissions,
       COALESCE(SUM(a.due_date::date - sub.submitted_at::date)
                FILTER (WHERE sub.submitted_at::date < a.due_date::date), 0) AS total_days_early,
       COALESCE(SUM(sub.submitted_at::date - a.due_date::date)
                FILTER (WHERE sub.submitted_at::date > a.due_date::date), 0) AS total_days_late
FROM submissions sub
JOIN module_registrations r ON r.registration_id = sub.registration_id
JOIN assignments a ON a.assignment_id = sub.assignment_id
WHERE r.student_id = $1
  AND ($2 = '' OR r.module_id = $2)
  AND sub.submitted_at IS NOT NULL`

func (repo reportRepository) GetTimingStats(ctx context.Context, studentID, moduleID string, exec ...core.DBExecutor) (report.TimingStats, error) {
	var stats report.TimingStats
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &stats, timingStatsQuery, studentID, moduleID); err != nil {
		return report.TimingStats{}, errors.Wrap(err, "querying timing stats")
	}
	return stats, nil
}

const wellbeingStatsQuery = `
SELECT AVG(sv.stress_level) AS average_stress,
       AVG(sv.sleep_hours) AS average_sleep,
       AVG(sv.social_connection_score) AS average_social,
       COUNT(*) AS total_surveys
FROM weekly_surveys sv
JOIN module_registrations r ON r.registration_id = sv.registration_id
WHERE r.student_id = $1
  AND ($2 = '' OR r.module_id = $2)
  AND ($3 <= 0 OR sv.week_number >= $3)
  AND ($4 <= 0 OR sv.week_number <= $4)`

func (repo reportRepository) GetWellbeingStats(ctx context.Context, studentID, moduleID string, weekStart, weekEnd int, exec ...core.DBExecutor) (report.WellbeingStats, error) {
	var stats report.WellbeingStats
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &stats, wellbeingStatsQuery, studentID, moduleID, weekStart, weekEnd); err != nil {
		return report.WellbeingStats{}, errors.Wrap(err, "querying wellbeing stats")
	}
	return stats, nil
}

const wellbeingWeeksQuery = `
SELECT sv.week_number,
       AVG(sv.stress_level) AS avg_stress,
       AVG(sv.sleep_hours) AS avg_sleep,
       AVG(sv.social_connection_score) AS avg_social
FROM weekly_surveys sv
JOIN module_registrations r ON r.registration_id = sv.registration_id
WHERE r.student_id = $1
  AND ($2 = '' OR r.module_id = $2)
  AND ($3 <= 0 OR sv.week_number >= $3)
  AND ($4 <= 0 OR sv.week_number <= $4)
GROUP BY sv.week_number
ORDER BY sv.week_number`

func (repo reportRepository) QueryWellbeingWeeks(ctx context.Context, studentID, moduleID string, weekStart, weekEnd int, exec ...core.DBExecutor) ([]report.WellbeingTrendWeek, error) {
	var weeks []report.WellbeingTrendWeek
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &weeks, wellbeingWeeksQuery, studentID, moduleID, weekStart, weekEnd); err != nil {
		return nil, errors.Wrap(err, "querying wellbeing weeks")
	}
	return weeks, nil
}

const moduleBreakdownQuery = `
SELECT m.module_id, m.module_name, r.status,
       COALESCE(att.total_classes, 0) AS total_classes,
       COALESCE(att.classes_attended, 0) AS classes_attended,
       COALESCE(sub.total_submissions, 0) AS total_submissions,
       COALESCE(sub.graded_submissions, 0) AS graded_submissions,
       sub.average_grade
FROM module_registrations r
JOIN modules m ON m.module_id = r.module_id
LEFT JOIN LATERAL (
    SELECT COUNT(*) AS total_classes,
           COUNT(*) FILTER (WHERE a.is_present) AS classes_attended
    FROM weekly_attendance a
    WHERE a.registration_id = r.registration_id
      AND ($3 <= 0 OR a.week_number >= $3)
      AND ($4 <= 0 OR a.week_number <= $4)
) att ON TRUE
LEFT JOIN LATERAL (
    SELECT COUNT(*) AS total_submissions,
           COUNT(s.grade_achieved) AS graded_submissions,
           AVG(s.grade_achieved) AS average_grade
    FROM submissions s
    WHERE s.registration_id = r.registration_id
) sub ON TRUE
WHERE r.student_id = $1
  AND ($2 = '' OR r.module_id = $2)
ORDER BY m.module_id`

func (repo reportRepository) QueryModuleBreakdown(ctx context.Context, studentID, moduleID string, weekStart, weekEnd int, exec ...core.DBExecutor) ([]report.ModuleBreakdown, error) {
	var breakdown []report.ModuleBreakdown
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &breakdown, moduleBreakdownQuery, studentID, moduleID, weekStart, weekEnd); err != nil {
		return nil, errors.Wrap(err, "querying module breakdown")
	}
	return breakdown, nil
}

func (repo reportRepository) GetCourseName(ctx context.Context, courseID string, exec ...core.DBExecutor) (string, error) {
	q, args, err := psql.Select("course_name").From("courses").Where(sq.Eq{"course_id": courseID}).ToSql()
	if err != nil {
		return "", errors.Wrap(err, "building query")
	}
	var name string
	if err = sqlx.GetContext(ctx, repo.getExec(exec), &name, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return "", report.ErrCourseNotFound
		}
		return "", errors.Wrap(err, "finding course")
	}
	return name, nil
}

const courseStudentsQuery = `
SELECT s.student_id,
       s.first_name || ' ' || s.last_name AS student_name,
       s.email,
       EXISTS (SELECT 1 FROM module_registrations r WHERE r.student_id = s.student_id) AS has_registrations
FROM students s
WHERE s.current_course_id = $1
ORDER BY s.student_id`

func (repo reportRepository) QueryCourseStudents(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]report.ComparisonStudent, error) {
	var students []report.ComparisonStudent
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &students, courseStudentsQuery, courseID); err != nil {
		return nil, errors.Wrap(err, "querying course students")
	}
	return students, nil
}

const courseAttendanceAggsQuery = `
SELECT r.student_id,
       COUNT(*) AS total_classes,
       COUNT(*) FILTER (WHERE a.is_present) AS classes_attended
FROM weekly_attendance a
JOIN module_registrations r ON r.registration_id = a.registration_id
JOIN students s ON s.student_id = r.student_id
WHERE s.current_course_id = $1
  AND ($2 <= 0 OR a.week_number >= $2)
  AND ($3 <= 0 OR a.week_number <= $3)
GROUP BY r.student_id`

func (repo reportRepository) QueryCourseAttendanceAggs(ctx context.Context, courseID string, weekStart, weekEnd int, exec ...core.DBExecutor) ([]report.StudentAttendanceAgg, error) {
	var aggs []report.StudentAttendanceAgg
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &aggs, courseAttendanceAggsQuery, courseID, weekStart, weekEnd); err != nil {
		return nil, errors.Wrap(err, "querying course attendance aggregates")
	}
	return aggs, nil
}

const courseGradeAggsQuery = `
SELECT r.student_id,
       COUNT(*) AS total_submissions,
       COUNT(sub.grade_achieved) AS graded_submissions,
       AVG(sub.grade_achieved) AS average_grade
FROM submissions sub
JOIN module_registrations r ON r.registration_id = sub.registration_id
JOIN students s ON s.student_id = r.student_id
WHERE s.current_course_id = $1
GROUP BY r.student_id`

func (repo reportRepository) QueryCourseGradeAggs(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]report.StudentGradeAgg, error) {
	var aggs []report.StudentGradeAgg
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &aggs, courseGradeAggsQuery, courseID); err != nil {
		return nil, errors.Wrap(err, "querying course grade aggregates")
	}
	return aggs, nil
}

const courseWellbeingAggsQuery = `
SELECT r.student_id,
       COUNT(*) AS total_surveys,
       AVG(sv.stress_level) AS avg_stress,
       AVG(sv.sleep_hours) AS avg_sleep,
       AVG(sv.social_connection_score) AS avg_social
FROM weekly_surveys sv
JOIN module_registrations r ON r.registration_id = sv.registration_id
JOIN students s ON s.student_id = r.student_id
WHERE s.current_course_id = $1
  AND ($2 <= 0 OR sv.week_number >= $2)
  AND ($3 <= 0 OR sv.week_number <= $3)
GROUP BY r.student_id`

func (repo reportRepository) QueryCourseWellbeingAggs(ctx context.Context, courseID string, weekStart, weekEnd int, exec ...core.DBExecutor) ([]report.StudentWellbeingAgg, error) {
	var aggs []report.StudentWellbeingAgg
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &aggs, courseWellbeingAggsQuery, courseID, weekStart, weekEnd); err != nil {
		return nil, errors.Wrap(err, "querying course wellbeing aggregates")
	}
	return aggs, nil
}
