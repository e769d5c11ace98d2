package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"nof0-trading-agents/internal/apperr"
	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/prompt"
	"nof0-trading-agents/internal/svc"
)

func toTemplateResp(t *model.PromptTemplates) templateResp {
	return templateResp{ID: t.ID, Name: t.Name, Body: t.Body, Strict: t.Strict, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func listTemplatesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svcCtx.Templates.List(r.Context())
		if err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInternal, "list templates", err))
			return
		}
		out := make([]templateResp, 0, len(rows))
		for _, t := range rows {
			out = append(out, toTemplateResp(t))
		}
		writeOK(w, out)
	}
}

func createTemplateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTemplateReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		t, err := svcCtx.Templates.Create(r.Context(), req.Name, req.Body, req.Strict)
		if err != nil {
			writeError(w, templateError(err))
			return
		}
		writeOK(w, toTemplateResp(t))
	}
}

func getTemplateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req templateIDPathReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		t, err := svcCtx.Templates.Get(r.Context(), req.ID)
		if err != nil {
			writeError(w, templateNotFound(req.ID, err))
			return
		}
		writeOK(w, toTemplateResp(t))
	}
}

func updateTemplateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateTemplateReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		t, err := svcCtx.Templates.Get(r.Context(), req.ID)
		if err != nil {
			writeError(w, templateNotFound(req.ID, err))
			return
		}
		if req.Name != "" {
			t.Name = req.Name
		}
		if req.Body != "" {
			t.Body = req.Body
		}
		t.Strict = req.Strict
		if err := svcCtx.Templates.Update(r.Context(), t); err != nil {
			writeError(w, templateError(err))
			return
		}
		writeOK(w, toTemplateResp(t))
	}
}

func deleteTemplateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req templateIDPathReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		if err := svcCtx.Templates.Delete(r.Context(), req.ID); err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInternal, "delete template", err))
			return
		}
		writeOK(w, map[string]bool{"success": true})
	}
}

func listPlaceholdersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, map[string][]string{"placeholders": prompt.Vocabulary})
	}
}

func templateNotFound(id string, err error) *apperr.Error {
	return apperr.Wrap(apperr.CodeNotFound, "template "+id+" not found", err).WithPublicCode("TEMPLATE_NOT_FOUND")
}

func templateError(err error) *apperr.Error {
	return apperr.Wrap(apperr.CodeInvalidArgument, err.Error(), err)
}
