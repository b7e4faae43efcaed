package report

import (
	"context"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Sibo-Zhao/UKFT-PAI-Group3/core"
)

// Screening thresholds and risk weights. At-risk factors compare term-long
// averages; the early warning lists look only at each student's latest survey.
const (
	attendanceThresholdLow = 70.0
	gradeThresholdFailing  = 40.0
	highStressLevel        = 4
	lowSleepHours          = 6.0
	lowSocialScore         = 2
	earlyWarningSleepHours = 5.0

	riskWeightAttendance    = 2.5
	riskWeightHighStress    = 3.0
	riskWeightLowSleep      = 2.0
	riskWeightLowSocial     = 2.0
	riskWeightFailingGrades = 3.5
)

var comparisonMetrics = []string{"attendance", "grades", "wellbeing", "submissions", "all"}

var (
	ErrStudentNotFound      = errors.New("student not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrModuleNotFound       = errors.New("module not found")
	ErrNoStudentsRegistered = errors.New("no students registered for this module")
	ErrNoSurveyData         = errors.New("no survey data available")
)

type Repository interface {
	QueryRiskStats(ctx context.Context, exec ...core.DBExecutor) ([]RiskStats, error)
	// QueryLatestSurveys returns each student's most recently submitted
	// survey; students without surveys are absent.
	QueryLatestSurveys(ctx context.Context, exec ...core.DBExecutor) ([]EarlyWarningStudent, error)
	// QueryLatestWeekAverages returns cohort averages for the highest
	// survey week and, when present, the week before it, newest first.
	QueryLatestWeekAverages(ctx context.Context, exec ...core.DBExecutor) ([]WeekAverages, error)
	GetModuleAcademicStats(ctx context.Context, moduleID string, exec ...core.DBExecutor) (ModuleAcademicStats, error)
	GetStudentHeader(ctx context.Context, studentID string, exec ...core.DBExecutor) (StudentHeader, error)
	QueryStudentGrades(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]GradeRow, error)
	QueryStudentAttendance(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]AttendanceRow, error)
	GetStudentAcademicStats(ctx context.Context, studentID string, exec ...core.DBExecutor) (StudentAcademicStats, error)
	QueryStudentSurveys(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]WellbeingWeek, error)
	GetProfileStats(ctx context.Context, studentID string, exec ...core.DBExecutor) (ProfileStats, error)

	// Analytics queries. moduleID narrows to one module when non-empty;
	// weekStart/weekEnd bound the week number when positive and apply to
	// attendance and surveys only.
	QueryAttendanceWeeks(ctx context.Context, studentID, moduleID string, weekStart, weekEnd int, exec ...core.DBExecutor) ([]AttendanceWeek, error)
	GetGradeStats(ctx context.Context, studentID, moduleID string, exec ...core.DBExecutor) (GradeStats, error)
	GetTimingStats(ctx context.Context, studentID, moduleID string, exec ...core.DBExecutor) (TimingStats, error)
	GetWellbeingStats(ctx context.Context, studentID, moduleID string, weekStart, weekEnd int, exec ...core.DBExecutor) (WellbeingStats, error)
	QueryWellbeingWeeks(ctx context.Context, studentID, moduleID string, weekStart, weekEnd int, exec ...core.DBExecutor) ([]WellbeingTrendWeek, error)
	QueryModuleBreakdown(ctx context.Context, studentID, moduleID string, weekStart, weekEnd int, exec ...core.DBExecutor) ([]ModuleBreakdown, error)

	GetCourseName(ctx context.Context, courseID string, exec ...core.DBExecutor) (string, error)
	QueryCourseStudents(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]ComparisonStudent, error)
	QueryCourseAttendanceAggs(ctx context.Context, courseID string, weekStart, weekEnd int, exec ...core.DBExecutor) ([]StudentAttendanceAgg, error)
	QueryCourseGradeAggs(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]StudentGradeAgg, error)
	QueryCourseWellbeingAggs(ctx context.Context, courseID string, weekStart, weekEnd int, exec ...core.DBExecutor) ([]StudentWellbeingAgg, error)
}

type ServiceInterface interface {
	AtRisk(ctx context.Context) (AtRiskReport, error)
	EarlyWarning(ctx context.Context) (EarlyWarning, error)
	EmailEarlyWarningDigest(ctx context.Context, to []mail.Address) (EarlyWarning, error)
	Weekly(ctx context.Context) (WeeklyReport, error)
	ModuleAcademic(ctx context.Context, moduleID string) (ModuleAcademicReport, error)
	StudentAcademic(ctx context.Context, studentID string) (StudentAcademicReport, error)
	AcademicPerformance(ctx context.Context, studentID string) (AcademicPerformance, error)
	WellbeingTrends(ctx context.Context, studentID string) (WellbeingTrends, error)
	FullProfile(ctx context.Context, studentID string) (FullProfile, error)
	StudentAnalytics(ctx context.Context, studentID, moduleID string, weekStart, weekEnd int) (StudentAnalytics, error)
	CourseComparison(ctx context.Context, courseID, metric string, weekStart, weekEnd int) (CourseComparison, error)
}

type service struct {
	db      core.DB
	repo    Repository
	mailSvc core.EmailService
}

var _ ServiceInterface = (*service)(nil)

func NewService(db core.DB, repo Repository, mailSvc core.EmailService) *service {
	return &service{
		db:      db,
		repo:    repo,
		mailSvc: mailSvc,
	}
}

func (svc *service) AtRisk(ctx context.Context) (AtRiskReport, error) {
	stats, err := svc.repo.QueryRiskStats(ctx)
	if err != nil {
		return AtRiskReport{}, err
	}

	students := make([]AtRiskStudent, 0, len(stats))
	for _, st := range stats {
		var factors []string
		var score float64

		if st.TotalClasses > 0 {
			rate := float64(st.ClassesAttended) / float64(st.TotalClasses) * 100
			if rate < attendanceThresholdLow {
				factors = append(factors, "low_attendance")
				score += riskWeightAttendance
			}
		}
		if st.AvgStress.Valid && st.AvgStress.Float64 > highStressLevel {
			factors = append(factors, "high_stress")
			score += riskWeightHighStress
		}
		if st.AvgSleep.Valid && st.AvgSleep.Float64 < lowSleepHours {
			factors = append(factors, "low_sleep")
			score += riskWeightLowSleep
		}
		if st.AvgSocial.Valid && st.AvgSocial.Float64 < lowSocialScore {
			factors = append(factors, "low_social_connection")
			score += riskWeightLowSocial
		}
		if st.AvgGrade.Valid && st.AvgGrade.Float64 < gradeThresholdFailing {
			factors = append(factors, "failing_grades")
			score += riskWeightFailingGrades
		}

		if len(factors) == 0 {
			continue
		}
		students = append(students, AtRiskStudent{
			StudentID:   st.StudentID,
			Name:        st.Name,
			Email:       st.Email,
			RiskFactors: factors,
			RiskScore:   core.Round2(score),
		})
	}

	sort.SliceStable(students, func(i, j int) bool { return students[i].RiskScore > students[j].RiskScore })

	return AtRiskReport{AtRiskStudents: students, TotalCount: len(students)}, nil
}

func (svc *service) EarlyWarning(ctx context.Context) (EarlyWarning, error) {
	latest, err := svc.repo.QueryLatestSurveys(ctx)
	if err != nil {
		return EarlyWarning{}, err
	}

	ew := EarlyWarning{
		HighStressStudents: EarlyWarningGroup{Students: []EarlyWarningStudent{}},
		LowSleepStudents:   EarlyWarningGroup{Students: []EarlyWarningStudent{}},
	}
	for _, st := range latest {
		if st.StressLevel.Valid && st.StressLevel.Int >= highStressLevel {
			ew.HighStressStudents.Students = append(ew.HighStressStudents.Students, st)
		}
		if st.SleepHours.Valid && st.SleepHours.Float64 < earlyWarningSleepHours {
			ew.LowSleepStudents.Students = append(ew.LowSleepStudents.Students, st)
		}
	}
	ew.HighStressStudents.Count = len(ew.HighStressStudents.Students)
	ew.LowSleepStudents.Count = len(ew.LowSleepStudents.Students)
	return ew, nil
}

// EmailEarlyWarningDigest sends the current early warning lists to the given
// recipients, typically the wellbeing officers.
func (svc *service) EmailEarlyWarningDigest(ctx context.Context, to []mail.Address) (EarlyWarning, error) {
	ew, err := svc.EarlyWarning(ctx)
	if err != nil {
		return EarlyWarning{}, err
	}
	if len(to) == 0 {
		return ew, nil
	}

	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To: to,
			Subject: fmt.Sprintf(
				"Early Warning Digest: %d high stress, %d low sleep",
				ew.HighStressStudents.Count, ew.LowSleepStudents.Count,
			),
			TemplateName: "early-warning-digest",
			TemplateData: ew,
		},
	)
	return ew, nil
}

func (svc *service) Weekly(ctx context.Context) (WeeklyReport, error) {
	weeks, err := svc.repo.QueryLatestWeekAverages(ctx)
	if err != nil {
		return WeeklyReport{}, err
	}
	if len(weeks) == 0 {
		return WeeklyReport{}, ErrNoSurveyData
	}

	cur := weeks[0]
	var prevStress, prevSleep *float64
	if len(weeks) > 1 && weeks[1].WeekNumber == cur.WeekNumber-1 {
		prevStress = &weeks[1].AvgStress.Float64
		prevSleep = &weeks[1].AvgSleep.Float64
	}

	rep := WeeklyReport{
		CurrentWeek: cur.WeekNumber,
		StressLevel: weeklyMetric(cur.AvgStress.Float64, prevStress),
		SleepHours:  weeklyMetric(cur.AvgSleep.Float64, prevSleep),
	}
	if cur.WeekNumber > 1 {
		rep.PreviousWeek = null.IntFrom(cur.WeekNumber - 1)
	}
	return rep, nil
}

func weeklyMetric(cur float64, prev *float64) WeeklyMetric {
	m := WeeklyMetric{CurrentWeekAverage: core.Round2(cur)}
	if prev == nil {
		return m
	}
	m.PreviousWeekAverage = null.Float64From(core.Round2(*prev))
	change := core.Round2(cur - *prev)
	m.Change = null.Float64From(change)
	m.ChangeDescription = null.StringFrom(changeDescription(change))
	return m
}

func changeDescription(change float64) string {
	switch {
	case change > 0:
		return "Increased"
	case change < 0:
		return "Decreased"
	default:
		return "No change"
	}
}

func (svc *service) ModuleAcademic(ctx context.Context, moduleID string) (ModuleAcademicReport, error) {
	stats, err := svc.repo.GetModuleAcademicStats(ctx, moduleID)
	if err != nil {
		return ModuleAcademicReport{}, err
	}
	if stats.TotalStudents == 0 {
		return ModuleAcademicReport{}, ErrNoStudentsRegistered
	}

	rep := ModuleAcademicReport{
		ModuleID:          moduleID,
		ClassAverageGrade: core.Round2(stats.AverageGrade.Float64),
		TotalStudents:     stats.TotalStudents,
		TotalAssignments:  stats.TotalAssignments,
	}
	if expected := stats.TotalStudents * stats.TotalAssignments; expected > 0 {
		rep.SubmissionRate = core.Round2(float64(stats.TotalSubmissions) / float64(expected) * 100)
	}
	rep.AttendanceRate = percent(stats.AttendancePresent, stats.AttendanceTotal)
	return rep, nil
}

func (svc *service) StudentAcademic(ctx context.Context, studentID string) (StudentAcademicReport, error) {
	hdr, err := svc.repo.GetStudentHeader(ctx, studentID)
	if err != nil {
		return StudentAcademicReport{}, err
	}
	grades, err := svc.repo.QueryStudentGrades(ctx, studentID)
	if err != nil {
		return StudentAcademicReport{}, err
	}
	atts, err := svc.repo.QueryStudentAttendance(ctx, studentID)
	if err != nil {
		return StudentAcademicReport{}, err
	}

	if grades == nil {
		grades = []GradeRow{}
	}
	if atts == nil {
		atts = []AttendanceRow{}
	}
	for i := range atts {
		atts[i].ClassDate = atts[i].ClassDateRaw.Format("2006-01-02")
	}

	return StudentAcademicReport{
		StudentID:       hdr.StudentID,
		Name:            hdr.Name,
		Grades:          grades,
		Attendance:      atts,
		ModulesEnrolled: hdr.ModulesEnrolled,
	}, nil
}

func (svc *service) AcademicPerformance(ctx context.Context, studentID string) (AcademicPerformance, error) {
	hdr, err := svc.repo.GetStudentHeader(ctx, studentID)
	if err != nil {
		return AcademicPerformance{}, err
	}
	stats, err := svc.repo.GetStudentAcademicStats(ctx, studentID)
	if err != nil {
		return AcademicPerformance{}, err
	}

	return AcademicPerformance{
		StudentID:        hdr.StudentID,
		Name:             hdr.Name,
		AverageGrade:     core.Round2(stats.AverageGrade.Float64),
		TotalSubmissions: stats.TotalSubmissions,
		AttendanceRate:   percent(stats.AttendancePresent, stats.AttendanceTotal),
		ModulesEnrolled:  hdr.ModulesEnrolled,
	}, nil
}

func (svc *service) WellbeingTrends(ctx context.Context, studentID string) (WellbeingTrends, error) {
	hdr, err := svc.repo.GetStudentHeader(ctx, studentID)
	if err != nil {
		return WellbeingTrends{}, err
	}
	rows, err := svc.repo.QueryStudentSurveys(ctx, studentID)
	if err != nil {
		return WellbeingTrends{}, err
	}
	if rows == nil {
		rows = []WellbeingWeek{}
	}

	var stress, sleep, social metricMean
	for _, r := range rows {
		if r.StressLevel.Valid {
			stress.add(float64(r.StressLevel.Int))
		}
		if r.SleepHours.Valid {
			sleep.add(r.SleepHours.Float64)
		}
		if r.SocialConnectionScore.Valid {
			social.add(float64(r.SocialConnectionScore.Int))
		}
	}

	return WellbeingTrends{
		StudentID: hdr.StudentID,
		Name:      hdr.Name,
		Averages: WellbeingAverages{
			StressLevel:           stress.mean(),
			SleepHours:            sleep.mean(),
			SocialConnectionScore: social.mean(),
		},
		WeeklyTrends: rows,
		TotalSurveys: len(rows),
	}, nil
}

func (svc *service) FullProfile(ctx context.Context, studentID string) (FullProfile, error) {
	hdr, err := svc.repo.GetStudentHeader(ctx, studentID)
	if err != nil {
		return FullProfile{}, err
	}
	stats, err := svc.repo.GetProfileStats(ctx, studentID)
	if err != nil {
		return FullProfile{}, err
	}

	return FullProfile{
		StudentInfo: ProfileInfo{
			StudentID:    hdr.StudentID,
			Name:         hdr.Name,
			Email:        hdr.Email,
			EnrolledYear: hdr.EnrolledYear,
			CourseID:     hdr.CourseID,
		},
		Academic: ProfileAcademic{
			AverageGrade:    core.Round2(stats.AverageGrade.Float64),
			ModulesEnrolled: hdr.ModulesEnrolled,
		},
		Wellbeing: ProfileWellbeing{
			AverageStress: core.Round2(stats.AverageStress.Float64),
			AverageSleep:  core.Round2(stats.AverageSleep.Float64),
		},
	}, nil
}

func (svc *service) StudentAnalytics(ctx context.Context, studentID, moduleID string, weekStart, weekEnd int) (StudentAnalytics, error) {
	hdr, err := svc.repo.GetStudentHeader(ctx, studentID)
	if err != nil {
		return StudentAnalytics{}, err
	}

	res := StudentAnalytics{
		StudentID:   hdr.StudentID,
		StudentName: hdr.Name,
		CourseID:    hdr.CourseID,
		CourseName:  hdr.CourseName,
	}

	breakdown, err := svc.repo.QueryModuleBreakdown(ctx, studentID, moduleID, weekStart, weekEnd)
	if err != nil {
		return StudentAnalytics{}, err
	}
	if len(breakdown) == 0 {
		res.Message = "No module registrations found"
		return res, nil
	}
	res.Filters = &AnalyticsFilters{
		ModuleID:  null.NewString(moduleID, moduleID != ""),
		WeekStart: null.NewInt(weekStart, weekStart > 0),
		WeekEnd:   null.NewInt(weekEnd, weekEnd > 0),
	}

	weeks, err := svc.repo.QueryAttendanceWeeks(ctx, studentID, moduleID, weekStart, weekEnd)
	if err != nil {
		return StudentAnalytics{}, err
	}
	if weeks == nil {
		weeks = []AttendanceWeek{}
	}
	var totalClasses, attended int
	for i := range weeks {
		weeks[i].AttendanceRate = percent(weeks[i].ClassesAttended, weeks[i].TotalClasses)
		totalClasses += weeks[i].TotalClasses
		attended += weeks[i].ClassesAttended
	}
	res.Analytics.Attendance = &AttendanceAnalytics{
		OverallRate:     percent(attended, totalClasses),
		TotalClasses:    totalClasses,
		ClassesAttended: attended,
		WeeklyTrends:    weeks,
	}

	gs, err := svc.repo.GetGradeStats(ctx, studentID, moduleID)
	if err != nil {
		return StudentAnalytics{}, err
	}
	res.Analytics.Academic = &AcademicAnalytics{
		AverageGrade:          core.Round2(gs.AverageGrade.Float64),
		MinimumGrade:          core.Round2(gs.MinimumGrade.Float64),
		MaximumGrade:          core.Round2(gs.MaximumGrade.Float64),
		TotalSubmissions:      gs.TotalSubmissions,
		GradedSubmissions:     gs.GradedSubmissions,
		GradingCompletionRate: percent(gs.GradedSubmissions, gs.TotalSubmissions),
	}

	ts, err := svc.repo.GetTimingStats(ctx, studentID, moduleID)
	if err != nil {
		return StudentAnalytics{}, err
	}
	timing := &TimingAnalytics{
		OnTimeSubmissions: ts.OnTimeSubmissions,
		EarlySubmissions:  ts.EarlySubmissions,
		LateSubmissions:   ts.LateSubmissions,
		// punctuality is measured against every submission, including
		// those never handed in
		PunctualityRate: percent(ts.OnTimeSubmissions+ts.EarlySubmissions, gs.TotalSubmissions),
	}
	if ts.EarlySubmissions > 0 {
		timing.AverageDaysEarly = core.Round2(float64(ts.TotalDaysEarly) / float64(ts.EarlySubmissions))
	}
	if ts.LateSubmissions > 0 {
		timing.AverageDaysLate = core.Round2(float64(ts.TotalDaysLate) / float64(ts.LateSubmissions))
	}
	res.Analytics.Timing = timing

	ws, err := svc.repo.GetWellbeingStats(ctx, studentID, moduleID, weekStart, weekEnd)
	if err != nil {
		return StudentAnalytics{}, err
	}
	trend, err := svc.repo.QueryWellbeingWeeks(ctx, studentID, moduleID, weekStart, weekEnd)
	if err != nil {
		return StudentAnalytics{}, err
	}
	if trend == nil {
		trend = []WellbeingTrendWeek{}
	}
	for i := range trend {
		roundNullFloat(&trend[i].AvgStress)
		roundNullFloat(&trend[i].AvgSleep)
		roundNullFloat(&trend[i].AvgSocial)
	}
	res.Analytics.Wellbeing = &WellbeingAnalytics{
		AverageStressLevel:      core.Round2(ws.AverageStress.Float64),
		AverageSleepHours:       core.Round2(ws.AverageSleep.Float64),
		AverageSocialConnection: core.Round2(ws.AverageSocial.Float64),
		TotalSurveys:            ws.TotalSurveys,
		WeeklyTrends:            trend,
	}

	for i := range breakdown {
		breakdown[i].AttendanceRate = percent(breakdown[i].ClassesAttended, breakdown[i].TotalClasses)
		breakdown[i].AverageGrade = core.Round2(breakdown[i].AvgGradeRaw.Float64)
	}
	res.Analytics.ModuleBreakdown = breakdown

	return res, nil
}

func (svc *service) CourseComparison(ctx context.Context, courseID, metric string, weekStart, weekEnd int) (CourseComparison, error) {
	if metric == "" {
		metric = "attendance"
	}
	if !validMetric(metric) {
		return CourseComparison{}, core.NewValidationError(
			errors.New("invalid comparison metric"),
			core.FieldError{Field: "metric", Error: fmt.Sprintf("must be one of: %s", strings.Join(comparisonMetrics, ", "))},
		)
	}

	courseName, err := svc.repo.GetCourseName(ctx, courseID)
	if err != nil {
		return CourseComparison{}, err
	}
	students, err := svc.repo.QueryCourseStudents(ctx, courseID)
	if err != nil {
		return CourseComparison{}, err
	}
	if len(students) == 0 {
		return CourseComparison{
			CourseID:   courseID,
			CourseName: courseName,
			Message:    "No students found in this course",
			Comparison: &[]ComparisonRow{},
		}, nil
	}

	var (
		attAggs   map[string]StudentAttendanceAgg
		gradeAggs map[string]StudentGradeAgg
		wbAggs    map[string]StudentWellbeingAgg
	)
	if metric == "attendance" || metric == "all" {
		aggs, err := svc.repo.QueryCourseAttendanceAggs(ctx, courseID, weekStart, weekEnd)
		if err != nil {
			return CourseComparison{}, err
		}
		attAggs = make(map[string]StudentAttendanceAgg, len(aggs))
		for _, a := range aggs {
			attAggs[a.StudentID] = a
		}
	}
	if metric == "grades" || metric == "all" {
		aggs, err := svc.repo.QueryCourseGradeAggs(ctx, courseID)
		if err != nil {
			return CourseComparison{}, err
		}
		gradeAggs = make(map[string]StudentGradeAgg, len(aggs))
		for _, a := range aggs {
			gradeAggs[a.StudentID] = a
		}
	}
	if metric == "wellbeing" || metric == "all" {
		aggs, err := svc.repo.QueryCourseWellbeingAggs(ctx, courseID, weekStart, weekEnd)
		if err != nil {
			return CourseComparison{}, err
		}
		wbAggs = make(map[string]StudentWellbeingAgg, len(aggs))
		for _, a := range aggs {
			wbAggs[a.StudentID] = a
		}
	}

	rows := make([]ComparisonRow, 0, len(students))
	for _, st := range students {
		if !st.HasRegistrations {
			continue
		}
		row := ComparisonRow{StudentID: st.StudentID, StudentName: st.StudentName, Email: st.Email}
		if attAggs != nil {
			agg := attAggs[st.StudentID]
			row.AttendanceRate = floatPtr(percent(agg.ClassesAttended, agg.TotalClasses))
			row.TotalClasses = intPtr(agg.TotalClasses)
			row.ClassesAttended = intPtr(agg.ClassesAttended)
		}
		if gradeAggs != nil {
			agg := gradeAggs[st.StudentID]
			row.AverageGrade = floatPtr(core.Round2(agg.AverageGrade.Float64))
			row.TotalSubmissions = intPtr(agg.TotalSubmissions)
			row.GradedSubmissions = intPtr(agg.GradedSubmissions)
		}
		if wbAggs != nil {
			agg := wbAggs[st.StudentID]
			row.AvgStressLevel = floatPtr(core.Round2(agg.AvgStress.Float64))
			row.AvgSleepHours = floatPtr(core.Round2(agg.AvgSleep.Float64))
			row.AvgSocialConnection = floatPtr(core.Round2(agg.AvgSocial.Float64))
			row.TotalSurveys = intPtr(agg.TotalSurveys)
		}
		rows = append(rows, row)
	}

	switch metric {
	case "attendance":
		sort.SliceStable(rows, func(i, j int) bool { return *rows[i].AttendanceRate > *rows[j].AttendanceRate })
	case "grades":
		sort.SliceStable(rows, func(i, j int) bool { return *rows[i].AverageGrade > *rows[j].AverageGrade })
	case "wellbeing":
		// lower stress first
		sort.SliceStable(rows, func(i, j int) bool { return *rows[i].AvgStressLevel < *rows[j].AvgStressLevel })
	}

	total := len(rows)
	return CourseComparison{
		CourseID:         courseID,
		CourseName:       courseName,
		ComparisonMetric: metric,
		Filters: &ComparisonFilters{
			WeekStart: null.NewInt(weekStart, weekStart > 0),
			WeekEnd:   null.NewInt(weekEnd, weekEnd > 0),
		},
		TotalStudents: &total,
		Students:      &rows,
	}, nil
}

func validMetric(metric string) bool {
	for _, m := range comparisonMetrics {
		if m == metric {
			return true
		}
	}
	return false
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return core.Round2(float64(part) / float64(total) * 100)
}

func roundNullFloat(f *null.Float64) {
	if f.Valid {
		f.Float64 = core.Round2(f.Float64)
	}
}

type metricMean struct {
	sum   float64
	count int
}

func (m *metricMean) add(v float64) {
	m.sum += v
	m.count++
}

func (m *metricMean) mean() float64 {
	if m.count == 0 {
		return 0
	}
	return core.Round2(m.sum / float64(m.count))
}

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
