package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/abdullahkazmii/ragserver/models"
)

// FileIndexingService keeps a local documents directory in sync with
// the vector store: scanning, chunking, embedding, and live re-indexing
// on file changes. Each indexed chunk carries the file's content hash
// so unchanged files are skipped on the next scan.
type FileIndexingService struct {
	store        VectorStore
	chunkSize    int
	chunkOverlap int
}

// NewFileIndexingService creates a new indexing service.
func NewFileIndexingService(store VectorStore, chunkSize, chunkOverlap int) *FileIndexingService {
	return &FileIndexingService{
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// WatchDirectory starts a long-running process to watch for file changes in real-time.
func (s *FileIndexingService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	// Goroutine to handle events from the watcher.
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// We only care about supported file types.
				if !isSupportedFile(event.Name) {
					continue
				}

				log.Printf("WATCHER EVENT: %s", event)

				// A Create or Write event means we need to index the file.
				// Many editors perform a "write" by creating a temp file and renaming,
				// which can trigger multiple events. We handle Create and Write the same.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: File modified/created: %s. Re-indexing...", event.Name)
					hash, err := calculateFileHash(event.Name)
					if err != nil {
						log.Printf("WATCHER WARN: Could not hash file %s: %v", event.Name, err)
						continue
					}
					// Delete old versions before re-indexing
					if err := s.store.DeleteBySource(ctx, event.Name); err != nil {
						log.Printf("WATCHER WARN: Could not delete old records for %s: %v", event.Name, err)
					}
					if err := s.processAndEmbedFile(ctx, event.Name, hash); err != nil {
						log.Printf("WATCHER ERROR: Failed to process file %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					// Rename is often treated as Remove by watchers.
					log.Printf("WATCHER: File removed/renamed: %s. Removing from index...", event.Name)
					if err := s.store.DeleteBySource(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete records for %s: %v", event.Name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dirPath)
	err = watcher.Add(dirPath)
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	// Block until the context is cancelled (e.g., server shutdown).
	<-ctx.Done()
}

// ScanAndIndexDirectory is the main function to sync the directory with the vector store.
func (s *FileIndexingService) ScanAndIndexDirectory(ctx context.Context, dirPath string) {
	log.Printf("INDEXER: Starting directory scan for: %s", dirPath)

	indexedFiles, err := s.store.IndexState(ctx)
	if err != nil {
		log.Printf("INDEXER ERROR: Could not get current index state: %v", err)
		return
	}
	log.Printf("INDEXER: Found %d files currently in the index.", len(indexedFiles))

	localFiles := make(map[string]bool)
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isSupportedFile(path) {
			localFiles[path] = true
			hash, err := calculateFileHash(path)
			if err != nil {
				log.Printf("INDEXER WARN: Could not hash file %s: %v", path, err)
				return nil
			}

			if storedHash, ok := indexedFiles[path]; ok {
				if storedHash == hash {
					return nil // File is unchanged, skip.
				}
				log.Printf("INDEXER: File has changed: %s. Re-indexing...", path)
				if err := s.store.DeleteBySource(ctx, path); err != nil {
					log.Printf("INDEXER ERROR: Failed to delete old version of %s: %v", path, err)
					return nil
				}
			}

			log.Printf("INDEXER: Indexing new/modified file: %s", path)
			if err := s.processAndEmbedFile(ctx, path, hash); err != nil {
				log.Printf("INDEXER ERROR: Failed to process file %s: %v", path, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", dirPath, err)
	}

	// Handle deletions
	for path := range indexedFiles {
		if !localFiles[path] {
			log.Printf("INDEXER: File deleted: %s. Removing from index...", path)
			if err := s.store.DeleteBySource(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete records for %s: %v", path, err)
			}
		}
	}
	log.Println("INDEXER: Directory scan finished.")
}

func (s *FileIndexingService) processAndEmbedFile(ctx context.Context, path, hash string) error {
	content, err := ExtractTextFromFile(path)
	if err != nil {
		return err
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
	)
	chunks, err := splitter.SplitText(content)
	if err != nil {
		return err
	}
	log.Printf("INDEXER: Split %s into %d chunks.", path, len(chunks))

	_, err = s.store.AddDocuments(ctx, chunks, models.DocumentSource{
		Type:     models.SourceTypeFile,
		Name:     path,
		FileHash: hash,
	})
	return err
}

func isSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".pdf":
		return true
	default:
		return false
	}
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
