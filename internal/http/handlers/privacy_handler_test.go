package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/issuebadge/issuebadge-service/internal/repo"
)

const privacyCap = "issuebadge:privacy"

func seedPrivacy(t *testing.T) *testEnv {
	t.Helper()
	env := newEnv(t, false)
	seedIssue(t, env.db, 42, 10, "B1")
	seedIssue(t, env.db, 42, 11, "B2")
	seedIssue(t, env.db, 42, 0, "B3")
	seedIssue(t, env.db, 43, 10, "B4")
	return env
}

func remaining(t *testing.T, env *testEnv, f repo.IssueFilter) int64 {
	t.Helper()
	n, err := repo.CountIssues(context.Background(), env.db, f)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestPrivacy_RequiresCapability(t *testing.T) {
	env := seedPrivacy(t)
	for _, path := range []string{"/privacy/metadata", "/privacy/users/42/contexts", "/privacy/contexts/system/users"} {
		expectStatus(t, env.do(t, http.MethodGet, path, "issuebadge:manage", nil), http.StatusForbidden)
	}
	expectStatus(t, env.do(t, http.MethodDelete, "/privacy/contexts/course:10", "issuebadge:privacy@10", nil), http.StatusForbidden)
	if n := remaining(t, env, repo.IssueFilter{}); n != 4 {
		t.Fatalf("nothing may be deleted, %d left", n)
	}
}

func TestPrivacy_UserContextsAndExport(t *testing.T) {
	env := seedPrivacy(t)

	w := env.do(t, http.MethodGet, "/privacy/users/42/contexts", privacyCap, nil)
	expectStatus(t, w, http.StatusOK)
	ctxs := decode[UserContextsResponse](t, w)
	if want := []string{"course:10", "course:11", "system"}; len(ctxs.Contexts) != 3 ||
		ctxs.Contexts[0] != want[0] || ctxs.Contexts[1] != want[1] || ctxs.Contexts[2] != want[2] {
		t.Fatalf("contexts = %v", ctxs.Contexts)
	}

	w = env.do(t, http.MethodGet, "/privacy/users/42/export", privacyCap, nil)
	expectStatus(t, w, http.StatusOK)
	exp := decode[UserExportResponse](t, w)
	if exp.UserID != 42 || len(exp.Contexts) != 3 {
		t.Fatalf("unexpected export: %+v", exp)
	}

	w = env.do(t, http.MethodGet, "/privacy/users/42/export?context=course:11", privacyCap, nil)
	expectStatus(t, w, http.StatusOK)
	exp = decode[UserExportResponse](t, w)
	if len(exp.Contexts) != 1 || exp.Contexts[0].Context != "course:11" ||
		len(exp.Contexts[0].Badges) != 1 || exp.Contexts[0].Badges[0].BadgeID != "B2" {
		t.Fatalf("unexpected filtered export: %+v", exp)
	}

	w = env.do(t, http.MethodGet, "/privacy/users/77/contexts", privacyCap, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[UserContextsResponse](t, w); got.Contexts == nil || len(got.Contexts) != 0 {
		t.Fatalf("expected empty list, got %v", got.Contexts)
	}

	expectStatus(t, env.do(t, http.MethodGet, "/privacy/users/abc/contexts", privacyCap, nil), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodGet, "/privacy/users/42/export?context=module:3", privacyCap, nil), http.StatusBadRequest)
}

func TestPrivacy_DeleteUser(t *testing.T) {
	env := seedPrivacy(t)

	w := env.do(t, http.MethodDelete, "/privacy/users/42?context=course:10&context=system", privacyCap, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[DeletedResponse](t, w); got.Deleted != 2 {
		t.Fatalf("deleted = %d, want 2", got.Deleted)
	}
	if n := remaining(t, env, repo.ForUser(42)); n != 1 {
		t.Fatalf("user 42 should keep course:11, has %d", n)
	}
	if n := remaining(t, env, repo.ForUser(43)); n != 1 {
		t.Fatalf("other users untouched, got %d", n)
	}

	w = env.do(t, http.MethodDelete, "/privacy/users/42", privacyCap, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[DeletedResponse](t, w); got.Deleted != 1 {
		t.Fatalf("deleted = %d, want 1", got.Deleted)
	}
	if n := remaining(t, env, repo.ForUser(42)); n != 0 {
		t.Fatalf("user 42 should have no records, has %d", n)
	}
}

func TestPrivacy_ContextOperations(t *testing.T) {
	env := seedPrivacy(t)

	w := env.do(t, http.MethodGet, "/privacy/contexts/course:10/users", privacyCap, nil)
	expectStatus(t, w, http.StatusOK)
	users := decode[ContextUsersResponse](t, w)
	if users.Context != "course:10" || len(users.UserIDs) != 2 || users.UserIDs[0] != 42 || users.UserIDs[1] != 43 {
		t.Fatalf("unexpected users: %+v", users)
	}

	w = env.do(t, http.MethodPost, "/privacy/contexts/course:10/delete-users", privacyCap, DeleteUsersRequest{UserIDs: []int64{}})
	expectStatus(t, w, http.StatusOK)
	if got := decode[DeletedResponse](t, w); got.Deleted != 0 {
		t.Fatalf("empty list must delete nothing, deleted %d", got.Deleted)
	}

	w = env.do(t, http.MethodPost, "/privacy/contexts/course:10/delete-users", privacyCap, DeleteUsersRequest{UserIDs: []int64{43}})
	expectStatus(t, w, http.StatusOK)
	if got := decode[DeletedResponse](t, w); got.Deleted != 1 {
		t.Fatalf("deleted = %d, want 1", got.Deleted)
	}

	w = env.do(t, http.MethodDelete, "/privacy/contexts/system", privacyCap, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[DeletedResponse](t, w); got.Deleted != 1 {
		t.Fatalf("deleted = %d, want 1", got.Deleted)
	}
	if n := remaining(t, env, repo.IssueFilter{}); n != 2 {
		t.Fatalf("remaining = %d, want 2", n)
	}

	expectStatus(t, env.do(t, http.MethodDelete, "/privacy/contexts/course:0", privacyCap, nil), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/privacy/contexts/system/delete-users", privacyCap, `{"user_ids":[0]}`), http.StatusBadRequest)
}

func TestPrivacy_Metadata(t *testing.T) {
	env := newEnv(t, false)

	w := env.do(t, http.MethodGet, "/privacy/metadata", privacyCap, nil)
	expectStatus(t, w, http.StatusOK)
	md := decode[MetadataResponse](t, w)
	if len(md.Items) != 2 || md.Items[0].Name != "badge_issues" || md.Items[1].Kind != "external_location" {
		t.Fatalf("unexpected metadata: %+v", md)
	}
}
