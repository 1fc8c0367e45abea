package repositories

import (
	"encoding/json"
	stderrors "errors"
	"time"

	"cinechat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMovieRepository interface {
	Create(movie Movie) (Movie, error)
	GetByID(id string) (Movie, error)
	List() ([]Movie, error)
	Update(movie Movie) error
	Delete(id string) error
}

type MovieRepository struct {
	db *badger.DB
}

func NewMovieRepository(db *badger.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

type Movie struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Genre     string    `json:"genre"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

func movieKey(id string) []byte {
	return []byte("movie:" + id)
}

func (m *MovieRepository) Create(movie Movie) (Movie, error) {
	movie.ID = uuid.NewString()
	movie.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(movie)
	if err != nil {
		return Movie{}, err
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(movieKey(movie.ID), data)
	})
	if err != nil {
		return Movie{}, err
	}
	return movie, nil
}

func (m *MovieRepository) GetByID(id string) (Movie, error) {
	var movie Movie
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(movieKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &movie)
		})
	})
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return Movie{}, errors.ErrNotFound
		}
		return Movie{}, err
	}
	return movie, nil
}

// List returns every stored movie via a prefix scan.
func (m *MovieRepository) List() ([]Movie, error) {
	var movies []Movie
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("movie:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var movie Movie
				if err := json.Unmarshal(val, &movie); err != nil {
					return err
				}
				movies = append(movies, movie)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return movies, err
}

func (m *MovieRepository) Update(movie Movie) error {
	data, err := json.Marshal(movie)
	if err != nil {
		return err
	}

	return m.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(movieKey(movie.ID)); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrNotFound
			}
			return err
		}
		return txn.Set(movieKey(movie.ID), data)
	})
}

func (m *MovieRepository) Delete(id string) error {
	return m.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(movieKey(id)); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrNotFound
			}
			return err
		}
		return txn.Delete(movieKey(id))
	})
}
