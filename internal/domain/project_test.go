package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewProject(t *testing.T) {
	t.Parallel()
	// Test valid project creation
	ownerID := uuid.New()

	project, err := NewProject(ownerID, "Website Redesign", "Q3 marketing site refresh", ProjectStatusPublic)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if project.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if project.OwnerID != ownerID {
		t.Errorf("Expected owner ID %s, got %s", ownerID, project.OwnerID)
	}

	if project.Status != ProjectStatusPublic {
		t.Errorf("Expected status %s, got %s", ProjectStatusPublic, project.Status)
	}

	if project.CreatedAt.IsZero() || project.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestNewProjectDefaultsToPrivate(t *testing.T) {
	t.Parallel()

	project, err := NewProject(uuid.New(), "Side Project", "", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if project.Status != ProjectStatusPrivate {
		t.Errorf("Expected default status %s, got %s", ProjectStatusPrivate, project.Status)
	}
}

func TestNewProjectInvalidInput(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	tests := []struct {
		name    string
		ownerID uuid.UUID
		pname   string
		status  ProjectStatus
		wantErr error
	}{
		{"empty_owner", uuid.Nil, "Valid Name", ProjectStatusPrivate, ErrEmptyProjectOwnerID},
		{"empty_name", ownerID, "", ProjectStatusPrivate, ErrEmptyProjectName},
		{"long_name", ownerID, strings.Repeat("x", 101), ProjectStatusPrivate, ErrProjectNameTooLong},
		{"bad_status", ownerID, "Valid Name", "archived", ErrInvalidProjectStatus},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewProject(tc.ownerID, tc.pname, "", tc.status)
			if err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestProjectUpdateStatus(t *testing.T) {
	t.Parallel()

	project, err := NewProject(uuid.New(), "Lifecycle", "", ProjectStatusPrivate)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := project.UpdateStatus(ProjectStatusClosed); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !project.IsClosed() {
		t.Error("Expected project to report closed")
	}

	if err := project.UpdateStatus("frozen"); err != ErrInvalidProjectStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidProjectStatus, err)
	}

	// A rejected update must not change the status.
	if project.Status != ProjectStatusClosed {
		t.Errorf("Expected status to stay %s, got %s", ProjectStatusClosed, project.Status)
	}
}
