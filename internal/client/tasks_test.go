package client

import (
	"context"
	"errors"
	"testing"

	"github.com/khoward/worktrack/internal/models"
)

type tasksEnv struct {
	store    *fakeStore
	projects *Projects
	tasks    *Tasks
	log      *noticeLog
}

func newTasksEnv(t *testing.T, userID string, admin bool, seedProjects []models.Project, seedTasks []models.Task) tasksEnv {
	t.Helper()
	store := newFakeStore()
	store.user = &User{ID: userID, Email: userID + "@example.com"}
	for _, p := range seedProjects {
		store.seed("projects", p)
	}
	for _, task := range seedTasks {
		store.seed("tasks", task)
	}
	log := &noticeLog{}
	session := testSession(userID, admin)
	projects := NewProjects(store, session, log.notifier())
	tasks := NewTasks(store, session, projects, log.notifier())
	ctx := context.Background()
	if err := projects.Load(ctx); err != nil {
		t.Fatalf("load projects: %v", err)
	}
	if err := tasks.Load(ctx); err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	return tasksEnv{store: store, projects: projects, tasks: tasks, log: log}
}

func TestTaskCreateValidation(t *testing.T) {
	env := newTasksEnv(t, "u1", false,
		[]models.Project{{ID: "p1", Name: "Gateway", UserID: "u1", StartDate: "2025-01-01"}}, nil)

	tests := []struct {
		name string
		form TaskForm
		want string
	}{
		{"missing project", TaskForm{}, "Please select a project."},
		{"unknown status", TaskForm{ProjectID: "p1", Status: "blocked"}, "Unknown task status."},
		{"due date in the past", TaskForm{ProjectID: "p1", DueDate: "2000-01-01"}, "End date cannot be in the past."},
		{"due before assign", TaskForm{ProjectID: "p1", AssignDate: "2999-06-01", DueDate: "2999-05-01"}, "End date cannot be before the assign date."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.Create(context.Background(), tt.form)
			var v ValidationError
			if !errors.As(err, &v) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if err.Error() != tt.want {
				t.Errorf("message = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestTaskCreateDerivesNameFromProject(t *testing.T) {
	env := newTasksEnv(t, "u1", false,
		[]models.Project{{ID: "p1", Name: "Gateway", UserID: "u1", StartDate: "2025-01-01"}}, nil)

	row, err := env.tasks.Create(context.Background(), TaskForm{ProjectID: "p1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if row.TaskName != "Gateway - Task" {
		t.Errorf("task name = %q", row.TaskName)
	}
	if row.Status != models.TaskTodo {
		t.Errorf("status = %q, want default", row.Status)
	}
	if row.AssignDate != models.Today() {
		t.Errorf("assign date = %q, want today", row.AssignDate)
	}
	if n, _ := env.log.last(); n.Message != "Task added." {
		t.Errorf("notice = %+v", n)
	}
}

func TestTaskCreateAttachGate(t *testing.T) {
	env := newTasksEnv(t, "u2", false,
		[]models.Project{{ID: "p1", Name: "Theirs", UserID: "u1", StartDate: "2025-01-01"}}, nil)

	_, err := env.tasks.Create(context.Background(), TaskForm{ProjectID: "p1"})
	var authz AuthzError
	if !errors.As(err, &authz) {
		t.Fatalf("err = %v, want AuthzError", err)
	}
	if err.Error() != "You can only add tasks to your own projects." {
		t.Errorf("message = %q", err.Error())
	}
	if env.tasks.Collection().Len() != 0 {
		t.Error("local state changed on a rejected create")
	}
}

func TestTaskCreateAdminAttachesAnywhere(t *testing.T) {
	env := newTasksEnv(t, "u9", true,
		[]models.Project{{ID: "p1", Name: "Theirs", UserID: "u1", StartDate: "2025-01-01"}}, nil)

	if _, err := env.tasks.Create(context.Background(), TaskForm{ProjectID: "p1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestTaskUpdateMoveGate(t *testing.T) {
	env := newTasksEnv(t, "u2", false,
		[]models.Project{
			{ID: "p1", Name: "Mine", UserID: "u2", StartDate: "2025-01-01"},
			{ID: "p2", Name: "Theirs", UserID: "u1", StartDate: "2025-01-01"},
		},
		[]models.Task{{ID: "t1", ProjectID: "p1", TaskName: "Mine - Task", UserID: "u2", AssignDate: "2025-01-05", Status: models.TaskTodo}})

	_, err := env.tasks.Update(context.Background(), "t1", TaskForm{ProjectID: "p2"})
	if err == nil || err.Error() != "You can only move tasks to your own projects." {
		t.Fatalf("err = %v", err)
	}
	got, _ := env.tasks.Find("t1")
	if got.ProjectID != "p1" {
		t.Errorf("task moved despite the gate: %+v", got)
	}
}

func TestTaskSetStatusOptimisticRollback(t *testing.T) {
	env := newTasksEnv(t, "u1", false,
		[]models.Project{{ID: "p1", Name: "Gateway", UserID: "u1", StartDate: "2025-01-01"}},
		[]models.Task{{ID: "t1", ProjectID: "p1", TaskName: "Gateway - Task", UserID: "u1", AssignDate: "2025-01-05", Status: models.TaskTodo}})
	env.store.failUpdate = &RemoteError{Status: 500, Message: "write failed"}

	err := env.tasks.SetStatus(context.Background(), "t1", models.TaskDone)
	if err == nil {
		t.Fatal("expected error")
	}
	got, _ := env.tasks.Find("t1")
	if got.Status != models.TaskTodo {
		t.Errorf("status = %q, want rolled back to %q", got.Status, models.TaskTodo)
	}
	if n, _ := env.log.last(); n.Message != "write failed" || n.Variant != NoticeDanger {
		t.Errorf("notice = %+v", n)
	}
}

func TestTaskSetStatusAssigneeAllowed(t *testing.T) {
	env := newTasksEnv(t, "u3", false,
		[]models.Project{{ID: "p1", Name: "Gateway", UserID: "u1", StartDate: "2025-01-01"}},
		[]models.Task{{ID: "t1", ProjectID: "p1", TaskName: "Gateway - Task", UserID: "u1", AssigneeID: strPtr("u3"), AssignDate: "2025-01-05", Status: models.TaskTodo}})

	if err := env.tasks.SetStatus(context.Background(), "t1", models.TaskInProgress); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, _ := env.tasks.Find("t1")
	if got.Status != models.TaskInProgress {
		t.Errorf("status = %q", got.Status)
	}
}

func TestTaskSetStatusStrangerBlocked(t *testing.T) {
	env := newTasksEnv(t, "u2", false,
		[]models.Project{{ID: "p1", Name: "Gateway", UserID: "u1", StartDate: "2025-01-01"}},
		[]models.Task{{ID: "t1", ProjectID: "p1", TaskName: "Gateway - Task", UserID: "u1", AssignDate: "2025-01-05", Status: models.TaskTodo}})

	err := env.tasks.SetStatus(context.Background(), "t1", models.TaskDone)
	if err == nil || err.Error() != "You can only update your own task." {
		t.Fatalf("err = %v", err)
	}
	got, _ := env.tasks.Find("t1")
	if got.Status != models.TaskTodo {
		t.Errorf("status = %q, want untouched", got.Status)
	}
}

func TestTaskDeleteOwnership(t *testing.T) {
	env := newTasksEnv(t, "u2", false,
		[]models.Project{{ID: "p1", Name: "Gateway", UserID: "u1", StartDate: "2025-01-01"}},
		[]models.Task{{ID: "t1", ProjectID: "p1", TaskName: "Gateway - Task", UserID: "u1", AssignDate: "2025-01-05", Status: models.TaskTodo}})

	err := env.tasks.Delete(context.Background(), "t1")
	if err == nil || err.Error() != "You can only delete your own task." {
		t.Fatalf("err = %v", err)
	}
	if env.tasks.Collection().Len() != 1 {
		t.Error("row removed despite the gate")
	}
}
