package phases

import (
	"context"

	"github.com/posterforge/extractioncore/internal/services"
)

// fakeVisionProvider returns a fixed queue of responses, one per call to
// Extract, so a test can script a phase's refinement or retry path.
type fakeVisionProvider struct {
	responses []services.VisionResult
	errs      []error
	calls     int
}

func (f *fakeVisionProvider) Extract(ctx context.Context, imagePath, prompt string) (services.VisionResult, error) {
	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return f.responses[i], err
}

func (f *fakeVisionProvider) Info() services.VisionInfo {
	return services.VisionInfo{Name: "fake-vision", Provider: "test"}
}

func (f *fakeVisionProvider) HealthCheck(ctx context.Context) bool { return true }

// fakeKnowledgeBase returns a fixed set of search hits.
type fakeKnowledgeBase struct {
	hits []services.ScoredEntity
	err  error
}

func (f *fakeKnowledgeBase) Search(ctx context.Context, text string, opts services.SearchOptions) ([]services.ScoredEntity, error) {
	return f.hits, f.err
}

// fakeArtistAuthority returns a fixed set of matches regardless of the name
// queried, or an error when configured to.
type fakeArtistAuthority struct {
	matches []services.NameMatch
	err     error
}

func (f *fakeArtistAuthority) SearchArtist(ctx context.Context, name string) ([]services.NameMatch, error) {
	return f.matches, f.err
}

// fakeEntityService backs EntityService with an in-memory name index.
type fakeEntityService struct {
	byName    map[string][]services.Entity
	err       error
	createErr error
	isNewByID map[string]bool
}

func (f *fakeEntityService) GetEntity(ctx context.Context, id string) (services.Entity, bool, error) {
	return services.Entity{}, false, nil
}

func (f *fakeEntityService) CreateEntities(ctx context.Context, entities []services.Entity) (map[string]bool, error) {
	if f.createErr != nil {
		return f.isNewByID, f.createErr
	}
	isNew := make(map[string]bool, len(entities))
	for _, e := range entities {
		isNew[e.ID] = true
	}
	return isNew, nil
}

func (f *fakeEntityService) FindByName(ctx context.Context, kind, query string) ([]services.Entity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[query], nil
}

// fakeRelationService records every relation it's asked to persist.
type fakeRelationService struct {
	relations []services.Relation
	err       error
}

func (f *fakeRelationService) CreateRelations(ctx context.Context, relations []services.Relation) error {
	if f.err != nil {
		return f.err
	}
	f.relations = append(f.relations, relations...)
	return nil
}

// fakeFilmAuthority backs FilmAuthority with fixed candidates/credits.
type fakeFilmAuthority struct {
	candidates []services.MovieCandidate
	credits    services.MovieCredits
	err        error
}

func (f *fakeFilmAuthority) SearchMovie(ctx context.Context, title string, year int) ([]services.MovieCandidate, error) {
	return f.candidates, f.err
}

func (f *fakeFilmAuthority) GetMovie(ctx context.Context, id string) (services.MovieCandidate, error) {
	return services.MovieCandidate{}, nil
}

func (f *fakeFilmAuthority) GetMovieCredits(ctx context.Context, id string) (services.MovieCredits, error) {
	return f.credits, nil
}

// fakeReleaseAuthority backs ReleaseAuthority with fixed candidates.
type fakeReleaseAuthority struct {
	releases []services.ReleaseCandidate
	err      error
}

func (f *fakeReleaseAuthority) SearchRelease(ctx context.Context, title, artist string) ([]services.ReleaseCandidate, error) {
	return f.releases, f.err
}

// fakeSecondaryMusicAuthority backs SecondaryMusicAuthority with fixed results.
type fakeSecondaryMusicAuthority struct {
	results []services.SecondaryReleaseCandidate
	err     error
}

func (f *fakeSecondaryMusicAuthority) SearchRelease(ctx context.Context, query string) ([]services.SecondaryReleaseCandidate, error) {
	return f.results, f.err
}
