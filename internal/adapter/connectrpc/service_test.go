package connectrpc

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eslsoft/phrasedrill/internal/adapter/repository"
	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/infrastructure/database"
	"github.com/eslsoft/phrasedrill/internal/usecase"
)

type testServer struct {
	*httptest.Server
	phrases usecase.PhraseUsecase
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name))
	if err != nil {
		t.Skipf("sqlite driver not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("skipping sqlite-dependent tests: %v", err)
	}
	db.SetMaxOpenConns(1)
	drv := entsql.OpenDB(dialect.SQLite, db)
	t.Cleanup(func() { _ = drv.Close() })
	if err := database.Migrate(context.Background(), drv); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	repo := repository.NewPhraseRepository(drv)
	phrases := usecase.NewPhraseUsecase(repo)
	sessions := usecase.NewSessionUsecase(phrases, time.Hour)

	mux := http.NewServeMux()
	mux.Handle(NewAnswerServiceHandler(NewAnswerServiceServer(usecase.NewAnswerUsecase(repo))))
	mux.Handle(NewPhraseServiceHandler(NewPhraseServiceServer(phrases)))
	mux.Handle(NewSessionServiceHandler(NewSessionServiceServer(sessions)))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, phrases: phrases}
}

func call[Req, Res any](t *testing.T, srv *testServer, procedure string, req *Req) (*Res, error) {
	t.Helper()
	client := connect.NewClient[Req, Res](srv.Client(), srv.URL+procedure, connect.WithCodec(jsonCodec{}))
	resp, err := client.CallUnary(context.Background(), connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func TestPhraseService_CreateGetList(t *testing.T) {
	srv := newTestServer(t)

	created, err := call[entity.Phrase, entity.Phrase](t, srv, PhraseServiceCreatePhraseProcedure, &entity.Phrase{
		Notebook:   "travel",
		SourceText: "  accident ",
		TargetText: "wypadek",
	})
	if err != nil {
		t.Fatalf("CreatePhrase returned error: %v", err)
	}
	if created.ID == 0 || created.SourceText != "accident" {
		t.Fatalf("unexpected created phrase: %+v", created)
	}

	got, err := call[IDRequest, entity.Phrase](t, srv, PhraseServiceGetPhraseProcedure, &IDRequest{ID: created.ID})
	if err != nil {
		t.Fatalf("GetPhrase returned error: %v", err)
	}
	if got.TargetText != "wypadek" {
		t.Fatalf("GetPhrase target = %q", got.TargetText)
	}

	list, err := call[ListPhrasesRequest, ListPhrasesResponse](t, srv, PhraseServiceListPhrasesProcedure, &ListPhrasesRequest{Notebook: "travel"})
	if err != nil {
		t.Fatalf("ListPhrases returned error: %v", err)
	}
	if len(list.Phrases) != 1 || list.Total != 1 {
		t.Fatalf("ListPhrases = %d items, total %d", len(list.Phrases), list.Total)
	}

	_, err = call[ListPhrasesRequest, ListPhrasesResponse](t, srv, PhraseServiceListPhrasesProcedure, &ListPhrasesRequest{Filter: "unknown_field == 1"})
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("invalid filter code = %v, err %v", connect.CodeOf(err), err)
	}

	if _, err := call[IDRequest, Empty](t, srv, PhraseServiceDeletePhraseProcedure, &IDRequest{ID: created.ID}); err != nil {
		t.Fatalf("DeletePhrase returned error: %v", err)
	}
	_, err = call[IDRequest, entity.Phrase](t, srv, PhraseServiceGetPhraseProcedure, &IDRequest{ID: created.ID})
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("GetPhrase after delete code = %v", connect.CodeOf(err))
	}
}

func TestAnswerClient_CheckAnswer(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	p, err := srv.phrases.Create(ctx, &entity.Phrase{SourceText: "I don't know", TargetText: "nie wiem"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	client := NewAnswerClient(srv.Client(), srv.URL+"/")
	out, err := client.CheckAnswer(ctx, entity.CheckRequest{PhraseID: p.ID, UserAnswer: "Nie wiem!", Direction: entity.SourceToTarget})
	if err != nil {
		t.Fatalf("CheckAnswer returned error: %v", err)
	}
	if !out.IsCorrect || out.NormalizedCorrect != "nie wiem" {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	out, err = client.CheckAnswer(ctx, entity.CheckRequest{PhraseID: p.ID, UserAnswer: "i dont know", Direction: entity.TargetToSource})
	if err != nil {
		t.Fatalf("CheckAnswer returned error: %v", err)
	}
	if out.IsCorrect || out.NormalizedCorrect != "i don't know" {
		t.Fatalf("expected missing apostrophe to fail: %+v", out)
	}

	_, err = client.CheckAnswer(ctx, entity.CheckRequest{PhraseID: p.ID + 100, UserAnswer: "x"})
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("missing phrase code = %v", connect.CodeOf(err))
	}
}

func TestSessionService_Flow(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	p, err := srv.phrases.Create(ctx, &entity.Phrase{SourceText: "yes", TargetText: "tak"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	view, err := call[StartSessionRequest, usecase.SessionView](t, srv, SessionServiceStartProcedure, &StartSessionRequest{PhraseIDs: []int64{p.ID}})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if view.ID == "" || view.Phase != entity.PhaseInProgress || view.Card == nil || view.Card.Prompt != "yes" {
		t.Fatalf("unexpected start view: %+v", view)
	}

	if _, err := call[SetAnswerRequest, usecase.SessionView](t, srv, SessionServiceSetAnswerProcedure, &SetAnswerRequest{SessionID: view.ID, PhraseID: p.ID, Value: "Tak."}); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	checked, err := call[SessionRequest, usecase.SessionView](t, srv, SessionServiceCheckProcedure, &SessionRequest{SessionID: view.ID})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if r := checked.Card.Result; !r.IsChecked || r.IsCorrect == nil || !*r.IsCorrect {
		t.Fatalf("unexpected check result: %+v", r)
	}

	_, err = call[SessionRequest, usecase.SessionView](t, srv, SessionServiceCheckProcedure, &SessionRequest{SessionID: view.ID})
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Fatalf("second check code = %v", connect.CodeOf(err))
	}

	next, err := call[SessionRequest, usecase.SessionView](t, srv, SessionServiceNextProcedure, &SessionRequest{SessionID: view.ID})
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if next.Phase != entity.PhaseRoundSummary || next.Summary == nil || next.Summary.CorrectCount != 1 {
		t.Fatalf("unexpected summary view: %+v", next)
	}

	if _, err := call[SessionRequest, usecase.SessionView](t, srv, SessionServiceFinishProcedure, &SessionRequest{SessionID: view.ID}); err != nil {
		t.Fatalf("Finish returned error: %v", err)
	}
	_, err = call[SessionRequest, usecase.SessionView](t, srv, SessionServiceGetProcedure, &SessionRequest{SessionID: view.ID})
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Fatalf("Get after finish code = %v", connect.CodeOf(err))
	}
}

func TestSessionService_StartRejectsBadSettings(t *testing.T) {
	srv := newTestServer(t)
	_, err := call[StartSessionRequest, usecase.SessionView](t, srv, SessionServiceStartProcedure, &StartSessionRequest{Direction: "sideways"})
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("bad direction code = %v", connect.CodeOf(err))
	}
	_, err = call[StartSessionRequest, usecase.SessionView](t, srv, SessionServiceStartProcedure, &StartSessionRequest{})
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Fatalf("empty store code = %v", connect.CodeOf(err))
	}
}

func TestServiceHandler_UnknownProcedure(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Post(srv.URL+"/"+SessionServiceName+"/Nope", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
