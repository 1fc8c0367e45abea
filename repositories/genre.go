package repositories

import (
	"encoding/json"
	stderrors "errors"

	"cinechat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IGenreRepository interface {
	Create(genre Genre) (Genre, error)
	List() ([]Genre, error)
	Update(genre Genre) error
	Delete(id string) error
}

type GenreRepository struct {
	db *badger.DB
}

func NewGenreRepository(db *badger.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func genreKey(id string) []byte {
	return []byte("genre:" + id)
}

func (g *GenreRepository) Create(genre Genre) (Genre, error) {
	genre.ID = uuid.NewString()

	data, err := json.Marshal(genre)
	if err != nil {
		return Genre{}, err
	}

	err = g.db.Update(func(txn *badger.Txn) error {
		return txn.Set(genreKey(genre.ID), data)
	})
	if err != nil {
		return Genre{}, err
	}
	return genre, nil
}

func (g *GenreRepository) List() ([]Genre, error) {
	var genres []Genre
	err := g.db.View(func(txn *badger.Txn) error {
		prefix := []byte("genre:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var genre Genre
				if err := json.Unmarshal(val, &genre); err != nil {
					return err
				}
				genres = append(genres, genre)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return genres, err
}

func (g *GenreRepository) Update(genre Genre) error {
	data, err := json.Marshal(genre)
	if err != nil {
		return err
	}

	return g.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(genreKey(genre.ID)); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrNotFound
			}
			return err
		}
		return txn.Set(genreKey(genre.ID), data)
	})
}

func (g *GenreRepository) Delete(id string) error {
	return g.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(genreKey(id)); err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrNotFound
			}
			return err
		}
		return txn.Delete(genreKey(id))
	})
}
