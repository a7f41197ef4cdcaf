package task

import (
	"context"
	"reflect"
	"testing"

	"github.com/Iron-Ham/taskfetch/internal/api"
	"github.com/Iron-Ham/taskfetch/internal/errors"
	"github.com/Iron-Ham/taskfetch/internal/network"
	"github.com/Iron-Ham/taskfetch/internal/testutil"
)

func TestFetchNextPath_Fixture(t *testing.T) {
	svc := testutil.NewFixtureService()
	repo := NewRepository(svc, "", nil)

	got, err := repo.FetchNextPath(context.Background())
	if err != nil {
		t.Fatalf("FetchNextPath() error = %v", err)
	}
	if got.NextPath == nil || *got.NextPath != testutil.FixtureNextPath {
		t.Errorf("NextPath = %v, want %q", got.NextPath, testutil.FixtureNextPath)
	}
}

func TestFetchResponseCode_Fixture(t *testing.T) {
	svc := testutil.NewFixtureService()
	repo := NewRepository(svc, "", nil)

	got, err := repo.FetchResponseCode(context.Background(), testutil.FixtureNextPath)
	if err != nil {
		t.Fatalf("FetchResponseCode() error = %v", err)
	}
	if got.Code() != testutil.FixtureResponseCode {
		t.Errorf("ResponseCode = %q, want %q", got.Code(), testutil.FixtureResponseCode)
	}
	if got.Path == nil || *got.Path != testutil.FixturePath {
		t.Errorf("Path = %v, want %q", got.Path, testutil.FixturePath)
	}
}

func TestExecuteTask_Fixture(t *testing.T) {
	svc := testutil.NewFixtureService()
	repo := NewRepository(svc, "", nil)

	got, err := repo.ExecuteTask(context.Background())
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if got.Code() != testutil.FixtureResponseCode {
		t.Errorf("ResponseCode = %q, want %q", got.Code(), testutil.FixtureResponseCode)
	}

	want := []string{api.NameNextPath, api.NameResponseCode}
	if order := svc.Order(); !reflect.DeepEqual(order, want) {
		t.Errorf("call order = %v, want %v", order, want)
	}
}

func TestExecuteTask_PassesNextPathThrough(t *testing.T) {
	const next = "http://example.test/abc/"
	var seen string

	svc := &testutil.FuncService{Fn: func(_ context.Context, ep api.Endpoint, out any) error {
		switch ep.Name {
		case api.NameNextPath:
			s := next
			out.(*NextPathResult).NextPath = &s
		case api.NameResponseCode:
			seen = ep.URL
			code := "rc"
			out.(*ResponseCodeResult).ResponseCode = &code
		}
		return nil
	}}

	got, err := NewRepository(svc, "http://root.test", nil).ExecuteTask(context.Background())
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if seen != next {
		t.Errorf("second call URL = %q, want %q", seen, next)
	}
	if got.Code() != "rc" {
		t.Errorf("Code() = %q, want rc", got.Code())
	}
}

func TestExecuteTask_FirstCallFailureSkipsSecond(t *testing.T) {
	svc := &testutil.FailingService{}
	repo := NewRepository(svc, "", nil)

	_, err := repo.ExecuteTask(context.Background())
	if err == nil {
		t.Fatal("ExecuteTask() expected error")
	}
	if got := errors.UserMessage(err); got != testutil.FailMessage {
		t.Errorf("UserMessage() = %q, want %q", got, testutil.FailMessage)
	}
	if n := svc.Calls(api.NameNextPath); n != 1 {
		t.Errorf("nextpath calls = %d, want 1", n)
	}
	if n := svc.Calls(api.NameResponseCode); n != 0 {
		t.Errorf("responsecode calls = %d, want 0", n)
	}
}

func TestExecuteTask_SecondCallFailureReturnedUnchanged(t *testing.T) {
	want := errors.NewInvalidResponseCode(404).WithEndpoint(api.NameResponseCode)
	svc := &testutil.FuncService{Fn: func(_ context.Context, ep api.Endpoint, out any) error {
		if ep.Name == api.NameNextPath {
			s := "http://example.test/x/"
			out.(*NextPathResult).NextPath = &s
			return nil
		}
		return want
	}}

	_, err := NewRepository(svc, "", nil).ExecuteTask(context.Background())
	if err != want {
		t.Errorf("ExecuteTask() error = %v, want the transport error unchanged", err)
	}
}

func TestExecuteTask_AbsentNextPathIsInvalidURL(t *testing.T) {
	srv := testutil.NewTaskServer(t, "unused")
	empty := &testutil.FuncService{Fn: func(ctx context.Context, ep api.Endpoint, out any) error {
		if ep.Name == api.NameNextPath {
			return nil
		}
		return network.NewClient().Call(ctx, ep, out)
	}}

	_, err := NewRepository(empty, srv.Root(), nil).ExecuteTask(context.Background())
	if !errors.Is(err, errors.ErrInvalidURL) {
		t.Fatalf("ExecuteTask() error = %v, want invalid url", err)
	}
	if empty.Calls(api.NameResponseCode) != 1 {
		t.Errorf("responsecode calls = %d, want 1", empty.Calls(api.NameResponseCode))
	}
}

func TestExecuteTask_OverHTTP(t *testing.T) {
	srv := testutil.NewTaskServer(t, testutil.FixtureResponseCode)
	repo := NewRepository(network.NewClient(), srv.Root(), nil)

	got, err := repo.ExecuteTask(context.Background())
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if got.Code() != testutil.FixtureResponseCode {
		t.Errorf("Code() = %q, want %q", got.Code(), testutil.FixtureResponseCode)
	}
	if srv.Hits("/nextpath") != 1 {
		t.Errorf("nextpath hits = %d, want 1", srv.Hits("/nextpath"))
	}
	if srv.Hits("/"+testutil.FixturePath+"/") != 1 {
		t.Errorf("response code hits = %d, want 1", srv.Hits("/"+testutil.FixturePath+"/"))
	}
}

func TestExecuteTask_OverHTTP_FirstCallFailsTwice(t *testing.T) {
	srv := testutil.NewTaskServer(t, testutil.FixtureResponseCode)
	srv.FailNext("/nextpath", 2)
	repo := NewRepository(network.NewClient(), srv.Root(), nil)

	_, err := repo.ExecuteTask(context.Background())
	if !errors.Is(err, errors.ErrInvalidResponseCode) {
		t.Fatalf("ExecuteTask() error = %v, want invalid response code", err)
	}
	if srv.Hits("/nextpath") != 2 {
		t.Errorf("nextpath hits = %d, want 2", srv.Hits("/nextpath"))
	}
	if srv.Hits("/"+testutil.FixturePath+"/") != 0 {
		t.Error("second call must not be issued after first call failure")
	}
}

func TestResponseCodeResult_Code(t *testing.T) {
	if got := (ResponseCodeResult{}).Code(); got != "" {
		t.Errorf("Code() on absent = %q, want empty", got)
	}
}
