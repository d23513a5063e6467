package models

// DashboardStats is the aggregate view served by /api/dashboard/stats.
type DashboardStats struct {
	KPIs              DashboardKPIs     `json:"kpis"`
	Pipeline          PipelineBuckets   `json:"pipeline"`
	ActivityBreakdown ActivityBreakdown `json:"activityBreakdown"`
}

// DashboardKPIs are the headline numbers of the dashboard.
type DashboardKPIs struct {
	TotalProspects  int `json:"totalProspects"`
	TotalActivities int `json:"totalActivities"`
	ConversionRate  int `json:"conversionRate"`
	ActiveUsers     int `json:"activeUsers"`
}

// PipelineBuckets counts leads per pipeline stage.
type PipelineBuckets struct {
	New        int `json:"new"`
	Contacted  int `json:"contacted"`
	Interested int `json:"interested"`
	Proposal   int `json:"proposal"`
	Won        int `json:"won"`
	Lost       int `json:"lost"`
}

// ActivityBreakdown classifies open activities by urgency.
type ActivityBreakdown struct {
	Queue          int `json:"queue"`
	Scheduled      int `json:"scheduled"`
	CompletedToday int `json:"completedToday"`
}
