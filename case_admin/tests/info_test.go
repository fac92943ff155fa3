package tests

import (
	"errors"
	"testing"
)

func TestSendAndListInfo(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}
	other, err := env.newUser("xyz")
	if err != nil {
		t.Fatal(err)
	}

	_, err = user.sendInfo(other.accountId, "hello")
	if !errors.Is(err, ErrForbidden) {
		t.Fatal("users cannot send notifications")
	}

	_, err = admin.sendInfo(54321, "hello")
	if err == nil {
		t.Fatal("notification to unknown user should fail")
	}

	for _, message := range []string{"first", "second"} {
		if _, err := admin.sendInfo(user.accountId, message); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := user.listInfos()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(infos))
	}
	for _, info := range infos {
		if info["is_read"] != false {
			t.Fatalf("new notifications should be unread: %v", info)
		}
	}

	infos, err = other.listInfos()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 0 {
		t.Fatalf("inbox should be scoped per user, got %v", infos)
	}
}

func TestMarkInfoRead(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}
	other, err := env.newUser("xyz")
	if err != nil {
		t.Fatal(err)
	}

	sent, err := admin.sendInfo(user.accountId, "please review case files")
	if err != nil {
		t.Fatal(err)
	}
	infoId, err := sent.Int("id")
	if err != nil {
		t.Fatal(err)
	}

	if err := other.markInfoRead(infoId); !errors.Is(err, ErrForbidden) {
		t.Fatal("users cannot read another user's notifications")
	}

	if err := user.markInfoRead(infoId); err != nil {
		t.Fatal(err)
	}

	infos, err := user.listInfos()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0]["is_read"] != true {
		t.Fatalf("notification should be read: %v", infos)
	}

	// Admins may flip the flag on anyone's behalf.
	sent, err = admin.sendInfo(user.accountId, "second notice")
	if err != nil {
		t.Fatal(err)
	}
	secondId, err := sent.Int("id")
	if err != nil {
		t.Fatal(err)
	}
	if err := admin.markInfoRead(secondId); err != nil {
		t.Fatal(err)
	}

	if err := user.markInfoRead(99999); err == nil {
		t.Fatal("unknown notification id should not resolve")
	}
}

func TestUnreadNotificationsListedFirst(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	first, err := admin.sendInfo(user.accountId, "first")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := admin.sendInfo(user.accountId, "second"); err != nil {
		t.Fatal(err)
	}

	firstId, err := first.Int("id")
	if err != nil {
		t.Fatal(err)
	}
	if err := user.markInfoRead(firstId); err != nil {
		t.Fatal(err)
	}

	infos, err := user.listInfos()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(infos))
	}
	if msg, _ := infos[0].String("message"); msg != "second" {
		t.Fatalf("unread notification should come first: %v", infos)
	}
	if infos[1]["is_read"] != true {
		t.Fatalf("read notification should come last: %v", infos)
	}
}

func TestInboxAccessByUserId(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}
	other, err := env.newUser("xyz")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := admin.sendInfo(user.accountId, "hello"); err != nil {
		t.Fatal(err)
	}

	infos, err := user.listInfosFor(user.accountId)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(infos))
	}

	if _, err := other.listInfosFor(user.accountId); !errors.Is(err, ErrForbidden) {
		t.Fatal("users cannot read another user's inbox")
	}

	infos, err = admin.listInfosFor(user.accountId)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 notification for admin view, got %d", len(infos))
	}
}
