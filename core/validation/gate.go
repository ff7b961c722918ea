// ABOUTME: Pre-flight validation gate for collection requests
// ABOUTME: Runs balance, project-ownership and blog-existence checks concurrently

package validation

import (
	"context"
	"sync"

	"blogforge-app-api/core/domain"
	coreerrors "blogforge-app-api/core/errors"
	"blogforge-app-api/core/interfaces"
)

// Request identifies the caller and target of a collection run.
type Request struct {
	UserID     string
	ProjectID  string
	BlogID     string
	ServiceKey string
}

// Result carries everything the pipeline needs once validation passed,
// extracted during the blog-existence check to avoid a second fetch.
type Result struct {
	Balance *domain.BalanceStatus
	Project *domain.Project
	Blog    *domain.BlogDocument

	PrimaryKeyword string
	Country        string
	BlogTitle      string
}

// Gate evaluates the three independent request predicates.
type Gate struct {
	balance  interfaces.BalanceService
	projects interfaces.ProjectStore
	blogs    interfaces.BlogStore
	logger   interfaces.Logger
}

// NewGate creates a validation gate.
func NewGate(balance interfaces.BalanceService, projects interfaces.ProjectStore, blogs interfaces.BlogStore, logger interfaces.Logger) *Gate {
	return &Gate{
		balance:  balance,
		projects: projects,
		blogs:    blogs,
		logger:   logger,
	}
}

// blogDocumentFields is the projection used by the existence check.
var blogDocumentFields = []string{"primary_keyword", "country", "title"}

// Validate runs all three checks concurrently and waits for every check to
// resolve before reporting. Each check is cheap and independent, so nothing
// is gained by cancelling siblings on first failure. On failure the most
// user-actionable error wins: balance, then project access, then blog.
func (g *Gate) Validate(ctx context.Context, req Request) (*Result, error) {
	var (
		wg sync.WaitGroup

		balanceStatus *domain.BalanceStatus
		balanceErr    error

		project    *domain.Project
		projectErr error

		blog    *domain.BlogDocument
		keyword string
		blogErr error
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		balanceStatus, balanceErr = g.balance.ValidateServiceBalance(ctx, req.UserID, req.ServiceKey)
	}()

	go func() {
		defer wg.Done()
		project, projectErr = g.checkProjectAccess(ctx, req.ProjectID, req.UserID)
	}()

	go func() {
		defer wg.Done()
		blog, keyword, blogErr = g.checkBlogDocument(ctx, req)
	}()

	wg.Wait()

	if balanceErr != nil {
		g.logger.Warn("Balance validation failed", map[string]interface{}{
			"user_id":     req.UserID,
			"service_key": req.ServiceKey,
			"error":       balanceErr.Error(),
		})
		return nil, balanceErr
	}
	if projectErr != nil {
		g.logger.Warn("Project validation failed", map[string]interface{}{
			"project_id": req.ProjectID,
			"user_id":    req.UserID,
			"error":      projectErr.Error(),
		})
		return nil, projectErr
	}
	if blogErr != nil {
		g.logger.Warn("Blog validation failed", map[string]interface{}{
			"blog_id": req.BlogID,
			"error":   blogErr.Error(),
		})
		return nil, blogErr
	}

	g.logger.Info("All validations passed", map[string]interface{}{
		"user_id": req.UserID,
		"blog_id": req.BlogID,
	})

	return &Result{
		Balance:        balanceStatus,
		Project:        project,
		Blog:           blog,
		PrimaryKeyword: keyword,
		Country:        blog.CountryOrDefault(),
		BlogTitle:      blog.BlogTitle(),
	}, nil
}

// checkProjectAccess fails when the project is missing or owned by someone
// else. Both cases surface as access denied so callers cannot probe for
// project existence.
func (g *Gate) checkProjectAccess(ctx context.Context, projectID, userID string) (*domain.Project, error) {
	project, err := g.projects.GetProject(ctx, projectID)
	if err != nil {
		if coreerrors.IsNotFound(err) {
			return nil, &coreerrors.AccessDeniedError{Resource: "project", ID: projectID}
		}
		return nil, err
	}
	if project.UserID != userID {
		return nil, &coreerrors.AccessDeniedError{Resource: "project", ID: projectID}
	}
	return project, nil
}

// checkBlogDocument fetches the target blog and extracts the upstream
// fields the run needs. A missing primary keyword means the earlier
// pipeline stages never ran.
func (g *Gate) checkBlogDocument(ctx context.Context, req Request) (*domain.BlogDocument, string, error) {
	blog, err := g.blogs.FetchBlogDocument(ctx, req.BlogID, req.ProjectID, req.UserID, blogDocumentFields)
	if err != nil {
		return nil, "", err
	}

	keyword, ok := blog.LatestPrimaryKeyword()
	if !ok {
		return nil, "", &coreerrors.ValidationError{
			Field:   "primary_keyword",
			Message: "no primary keyword found, complete previous steps first",
		}
	}

	return blog, keyword, nil
}
