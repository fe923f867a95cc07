// Package seed loads reference data (departments, wards, routing and
// escalation rules, category policies, demo staff) and generates
// deterministic demo issues for environments without a database.
package seed

import (
	"time"

	"github.com/civic-kit/issue-service/internal/domain"
)

// Departments returns the municipal departments the console routes issues to.
func Departments() []domain.Department {
	return []domain.Department{
		{ID: "PWD001", Name: "Public Works Department", Code: "PWD", Contact: "pwd@jharkhand.gov.in", Head: "Rajesh Kumar Singh", ActiveStaff: 45},
		{ID: "UDD001", Name: "Urban Development Department", Code: "UDD", Contact: "udd@jharkhand.gov.in", Head: "Priya Sharma", ActiveStaff: 32},
		{ID: "PHE001", Name: "Public Health Engineering", Code: "PHE", Contact: "phe@jharkhand.gov.in", Head: "Amit Verma", ActiveStaff: 28},
		{ID: "ELE001", Name: "Electricity Department", Code: "ELE", Contact: "electricity@jharkhand.gov.in", Head: "Sunita Devi", ActiveStaff: 38},
		{ID: "ENV001", Name: "Environment & Pollution Control", Code: "ENV", Contact: "env@jharkhand.gov.in", Head: "Manoj Tiwari", ActiveStaff: 22},
		{ID: "TRA001", Name: "Transport Department", Code: "TRA", Contact: "transport@jharkhand.gov.in", Head: "Kavita Kumari", ActiveStaff: 26},
	}
}

// Wards returns the administrative wards covered by the console.
func Wards() []domain.Ward {
	return []domain.Ward{
		{ID: "RAN001", Name: "Hinoo", Zone: "Central Ranchi", Population: 45000, Area: "12.5 sq km", Councillor: "Deepak Mahto"},
		{ID: "RAN002", Name: "Lalpur", Zone: "North Ranchi", Population: 52000, Area: "15.2 sq km", Councillor: "Anita Kumari"},
		{ID: "RAN003", Name: "Kadru", Zone: "South Ranchi", Population: 38000, Area: "10.8 sq km", Councillor: "Santosh Oraon"},
		{ID: "DHA001", Name: "Jharia", Zone: "Central Dhanbad", Population: 61000, Area: "18.4 sq km", Councillor: "Ramesh Prasad"},
		{ID: "DHA002", Name: "Hirapur", Zone: "East Dhanbad", Population: 47000, Area: "13.6 sq km", Councillor: "Geeta Devi"},
		{ID: "BOK001", Name: "City Centre", Zone: "Central Bokaro", Population: 55000, Area: "16.1 sq km", Councillor: "Vijay Mandal"},
		{ID: "JAM001", Name: "Sakchi", Zone: "West Jamshedpur", Population: 58000, Area: "14.9 sq km", Councillor: "Pooja Singh"},
		{ID: "JAM002", Name: "Bistupur", Zone: "Central Jamshedpur", Population: 49000, Area: "13.2 sq km", Councillor: "Arjun Munda"},
	}
}

// RoutingRules returns the default routing table. Order is significant:
// matching is first-wins, so ward-specific rules precede wildcard ones.
func RoutingRules() []domain.RoutingRule {
	return []domain.RoutingRule{
		{ID: "RT001", Category: domain.CategoryRoadRepair, Ward: domain.AllWards, Department: "PWD", Priority: domain.PriorityHigh, AutoAssign: true},
		{ID: "RT002", Category: domain.CategoryWaterSupply, Ward: domain.AllWards, Department: "PHE", Priority: domain.PriorityCritical, AutoAssign: true},
		{ID: "RT003", Category: domain.CategoryElectricity, Ward: domain.AllWards, Department: "ELE", Priority: domain.PriorityCritical, AutoAssign: true},
		{ID: "RT004", Category: domain.CategoryWasteManagement, Ward: "Central Areas", Department: "UDD", Priority: domain.PriorityMedium, AutoAssign: false},
		{ID: "RT005", Category: domain.CategoryStreetLighting, Ward: domain.AllWards, Department: "ELE", Priority: domain.PriorityLow, AutoAssign: true},
	}
}

// EscalationRules returns the default escalation ladder.
func EscalationRules() []domain.EscalationRule {
	critical := domain.PriorityCritical
	return []domain.EscalationRule{
		{
			ID:        "ESC001",
			Level:     1,
			Condition: "No acknowledgment in 2 hours",
			Statuses:  []domain.IssueStatus{domain.StatusNew},
			Threshold: 2 * time.Hour,
			Basis:     domain.BasisCreated,
			Action:    "Notify Department Head",
			Active:    true,
		},
		{
			ID:        "ESC002",
			Level:     2,
			Condition: "No progress in 24 hours",
			Statuses:  []domain.IssueStatus{domain.StatusNew, domain.StatusAcknowledged},
			Threshold: 24 * time.Hour,
			Basis:     domain.BasisCreated,
			Action:    "Escalate to District Collector",
			Active:    true,
		},
		{
			ID:          "ESC003",
			Level:       3,
			Condition:   "SLA breach (Critical issues)",
			Threshold:   48 * time.Hour,
			Basis:       domain.BasisCreated,
			MinPriority: &critical,
			Action:      "SMS to Chief Secretary",
			Active:      false,
		},
	}
}

// CategoryPolicies returns each category's SLA target and default department.
func CategoryPolicies() []domain.CategoryPolicy {
	hours := func(n int) domain.SLATarget {
		return domain.SLATarget{Amount: n, Unit: domain.SLAUnitHours}
	}
	return []domain.CategoryPolicy{
		{Category: domain.CategoryElectricity, SLATarget: hours(4), DefaultDept: "ELE"},
		{Category: domain.CategoryWaterSupply, SLATarget: hours(8), DefaultDept: "PHE"},
		{Category: domain.CategoryRoadRepair, SLATarget: hours(24), DefaultDept: "PWD"},
		{Category: domain.CategoryWasteManagement, SLATarget: hours(24), DefaultDept: "UDD"},
		{Category: domain.CategoryStreetLighting, SLATarget: hours(24), DefaultDept: "ELE"},
		{Category: domain.CategoryDrainage, SLATarget: hours(24), DefaultDept: "PHE"},
		{Category: domain.CategoryParkMaintenance, SLATarget: hours(24), DefaultDept: "UDD"},
		{Category: domain.CategoryTrafficIssues, SLATarget: hours(24), DefaultDept: "TRA"},
	}
}

// Staff returns the demo operator accounts. Every account uses the password
// "changeme" hashed with bcrypt; these exist only for local development.
func Staff() []domain.Staff {
	// bcrypt("changeme"), cost 10
	const demoHash = "$2b$10$v0CuGNL.sWZaHeBf.0CafuCkIyGa8ZqmvQQC9rrE3PJ4MfOY7uM/a"
	return []domain.Staff{
		{ID: "STF001", Name: "Anjali Mehta", Email: "anjali.mehta@jharkhand.gov.in", PasswordHash: demoHash, Role: domain.RoleSuperAdmin, Department: "", Phone: "+91 94310 11001", Active: true},
		{ID: "STF002", Name: "Rakesh Jha", Email: "rakesh.jha@jharkhand.gov.in", PasswordHash: demoHash, Role: domain.RoleDepartmentAdmin, Department: "PWD", Phone: "+91 94310 11002", Active: true},
		{ID: "STF003", Name: "Seema Kisku", Email: "seema.kisku@jharkhand.gov.in", PasswordHash: demoHash, Role: domain.RoleDepartmentAdmin, Department: "PHE", Phone: "+91 94310 11003", Active: true},
		{ID: "STF004", Name: "Nilesh Topno", Email: "nilesh.topno@jharkhand.gov.in", PasswordHash: demoHash, Role: domain.RoleFieldStaff, Department: "ELE", Phone: "+91 94310 11004", Active: true},
		{ID: "STF005", Name: "Farhan Ansari", Email: "farhan.ansari@jharkhand.gov.in", PasswordHash: demoHash, Role: domain.RoleFieldStaff, Department: "PWD", Phone: "+91 94310 11005", Active: true},
		{ID: "STF006", Name: "Ritu Lakra", Email: "ritu.lakra@jharkhand.gov.in", PasswordHash: demoHash, Role: domain.RoleViewer, Department: "", Phone: "+91 94310 11006", Active: false},
	}
}
