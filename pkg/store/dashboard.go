package store

import (
	"sync"
	"time"

	"github.com/millie-ai/millie/pkg/models"
)

const DashboardFile = "dashboard.json"

var _ models.DashboardStore = &DashboardFileStore{}

type DashboardFileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewDashboardFileStore(path string) *DashboardFileStore {
	return &DashboardFileStore{path: path, now: time.Now}
}

// Get returns the dashboard snapshot. Value is nil until one has been written.
func (s *DashboardFileStore) Get() models.ReadResult[*models.DashboardData] {
	r := ReadJSON[*models.DashboardData](s.path, nil)
	logRead(DashboardFile, r)
	return r
}

// Put overwrites the snapshot, stamping LastUpdated.
func (s *DashboardFileStore) Put(data *models.DashboardData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.put(data)
}

func (s *DashboardFileStore) put(data *models.DashboardData) error {
	snapshot := *data
	now := s.now().UTC()
	snapshot.LastUpdated = &now

	return WriteJSON(s.path, &snapshot)
}

// SetDailyQuotes replaces the quotes of the current snapshot, creating one if
// none exists.
func (s *DashboardFileStore) SetDailyQuotes(quotes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.Get().Value
	if data == nil {
		data = &models.DashboardData{}
	}
	data.DailyQuotes = quotes

	return s.put(data)
}
