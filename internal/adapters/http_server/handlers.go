package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"reviewhub/internal/adapters/observability"
	"reviewhub/internal/app"
	"reviewhub/internal/domain"
)

type Handlers struct {
	Users    *app.UserService
	Products *app.ProductService
	Rank     *app.RankService
	Graph    *app.SocialGraph
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// reuse the domain rule so the HTTP layer and the core agree on format
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return domain.ValidUsername(fl.Field().String())
	})
	return v
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/users", h.createUser)
	s.mux.Get("/v1/users", h.listUsers)
	s.mux.Get("/v1/users/{id}", h.getUser)
	s.mux.Delete("/v1/users/{id}", h.deleteUser)
	s.mux.Get("/v1/users/{id}/followers", h.listFollowers)
	s.mux.Get("/v1/users/{id}/following", h.listFollowing)
	s.mux.Get("/v1/users/{id}/similar", h.listSimilarUsers)
	s.mux.Post("/v1/users/{id}/follow/{targetId}", h.follow)
	s.mux.Post("/v1/users/{id}/unfollow/{targetId}", h.unfollow)
	s.mux.Post("/v1/users/{id}/followers/{followerId}/remove", h.removeFollower)
	s.mux.Post("/v1/users/{id}/reviews", h.createReview)
	s.mux.Get("/v1/users/{id}/reviews", h.listUserReviews)
	s.mux.Delete("/v1/users/{id}/reviews/{reviewId}", h.deleteReview)

	s.mux.Post("/v1/products", h.createProduct)
	s.mux.Get("/v1/products", h.listProducts)
	s.mux.Get("/v1/products/{id}", h.getProduct)
	s.mux.Delete("/v1/products/{id}", h.deleteProduct)
	s.mux.Get("/v1/products/{id}/reviews", h.listProductReviews)
}

// ---- helpers ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeDomainErr maps core error taxonomy onto HTTP statuses.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrDuplicate):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrBaseUserRequired),
		errors.Is(err, domain.ErrSelfReference),
		errors.Is(err, domain.ErrInvalidUsername),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidCategory):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeWithETag sends v as JSON, short-circuiting to 304 on If-None-Match.
func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	return true
}

// ---- wire views ----

type userView struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Reviews   []reviewView    `json:"reviews"`
	Followers []int64         `json:"followers"`
	Following []int64         `json:"following"`
}

type reviewView struct {
	ID        int64  `json:"id"`
	AuthorID  int64  `json:"authorId"`
	ProductID int64  `json:"productId"`
	Rating    int    `json:"rating"`
	Text      string `json:"text"`
}

type productView struct {
	ID       int64        `json:"id"`
	Category string       `json:"category"`
	URL      string       `json:"url"`
	Reviews  []reviewView `json:"reviews"`
}

func toReviewViews(rs []domain.Review) []reviewView {
	out := make([]reviewView, 0, len(rs))
	for _, r := range rs {
		out = append(out, reviewView{ID: r.ID, AuthorID: r.AuthorID, ProductID: r.ProductID, Rating: r.Rating, Text: r.Text})
	}
	return out
}

func sortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func toUserView(u domain.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Reviews:   toReviewViews(u.Reviews),
		Followers: sortedIDs(u.Followers),
		Following: sortedIDs(u.Following),
	}
}

func toProductView(p domain.Product) productView {
	return productView{ID: p.ID, Category: string(p.Category), URL: p.URL, Reviews: toReviewViews(p.Reviews)}
}

// ---- users ----

type createUserReq struct {
	Username string `json:"username" validate:"required,username"`
}

func (h *Handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if !decodeAndValidate(w, r, &req) {
		return
	}
	u, err := h.Users.Create(r.Context(), req.Username)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(u))
}

func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	q := app.UserRankQuery{Strategy: app.ParseUserStrategy(r.URL.Query().Get("sort"))}
	if s := r.URL.Query().Get("baseUserId"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid baseUserId", "baseUserId must be a number")
			return
		}
		q.BaseUserID = id
	}
	ranked, err := h.Rank.RankUsers(r.Context(), users, q)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]userView, 0, len(ranked))
	for _, u := range ranked {
		out = append(out, toUserView(u))
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeWithETag(w, r, toUserView(u))
}

func (h *Handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	if err := h.Users.Delete(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listFollowers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	out, err := h.Users.Followers(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) listFollowing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	out, err := h.Users.Following(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) listSimilarUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	out, err := h.Users.SimilarUsers(r.Context(), id, h.Rank)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeWithETag(w, r, out)
}

// ---- social graph ----

type graphResult struct {
	Outcome string `json:"outcome"` // applied | no_change
	Detail  string `json:"detail,omitempty"`
}

func (h *Handlers) graphOp(w http.ResponseWriter, r *http.Request, op string, srcParam, dstParam string,
	apply func(src, dst *domain.User) (app.Outcome, error), noChangeDetail string) {

	srcID, ok := pathID(r, srcParam)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", srcParam+" must be a positive number")
		return
	}
	dstID, ok := pathID(r, dstParam)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", dstParam+" must be a positive number")
		return
	}

	src, err := h.Users.Load(r.Context(), srcID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	dst, err := h.Users.Load(r.Context(), dstID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	out, err := apply(&src, &dst)
	if err != nil {
		observability.ObserveGraphOp(op, "rejected")
		writeDomainErr(w, err)
		return
	}
	observability.ObserveGraphOp(op, out.String())
	h.Users.InvalidateUsers(r.Context(), srcID, dstID)

	res := graphResult{Outcome: out.String()}
	if out == app.NoChange {
		res.Detail = noChangeDetail
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) follow(w http.ResponseWriter, r *http.Request) {
	h.graphOp(w, r, "follow", "id", "targetId", func(src, dst *domain.User) (app.Outcome, error) {
		return h.Graph.Follow(r.Context(), src, dst)
	}, "already following")
}

func (h *Handlers) unfollow(w http.ResponseWriter, r *http.Request) {
	h.graphOp(w, r, "unfollow", "id", "targetId", func(src, dst *domain.User) (app.Outcome, error) {
		return h.Graph.Unfollow(r.Context(), src, dst)
	}, "not following")
}

func (h *Handlers) removeFollower(w http.ResponseWriter, r *http.Request) {
	h.graphOp(w, r, "remove_follower", "id", "followerId", func(target, follower *domain.User) (app.Outcome, error) {
		return h.Graph.RemoveFollower(r.Context(), target, follower)
	}, "not a follower")
}

// ---- reviews ----

type createReviewReq struct {
	ProductID int64   `json:"productId" validate:"required,gt=0"`
	Rating    int     `json:"rating" validate:"gte=0,lte=5"`
	Text      *string `json:"text" validate:"required"` // pointer so empty text stays valid
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	var req createReviewReq
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rv, err := h.Users.AddReview(r.Context(), id, req.ProductID, req.Rating, *req.Text)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewViews([]domain.Review{rv})[0])
}

func (h *Handlers) listUserReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	rs, err := h.Users.Reviews(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeWithETag(w, r, toReviewViews(rs))
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	reviewID, ok := pathID(r, "reviewId")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "reviewId must be a positive number")
		return
	}
	if err := h.Users.DeleteReview(r.Context(), id, reviewID); err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

// ---- products ----

type createProductReq struct {
	Category string `json:"category" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
}

func (h *Handlers) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := h.Products.Create(r.Context(), req.Category, req.URL)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductView(p))
}

func (h *Handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Products.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductView(p))
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	p, err := h.Products.Get(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeWithETag(w, r, toProductView(p))
}

func (h *Handlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	if err := h.Products.Delete(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listProductReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}

	q := app.ReviewRankQuery{Strategy: app.ParseReviewStrategy(r.URL.Query().Get("sort"))}
	if s := r.URL.Query().Get("minRating"); s != "" {
		mr, err := strconv.Atoi(s)
		if err != nil || mr < domain.MinRating || mr > domain.MaxRating {
			writeProblem(w, http.StatusBadRequest, "Invalid minRating", "minRating must be an integer between 0 and 5")
			return
		}
		q.MinRating = mr
	}
	if s := r.URL.Query().Get("baseUserId"); s != "" {
		bid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid baseUserId", "baseUserId must be a number")
			return
		}
		q.BaseUserID = bid
	}

	rs, err := h.Products.Reviews(r.Context(), id, q)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeWithETag(w, r, toReviewViews(rs))
}
