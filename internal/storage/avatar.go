// Package storage はアバター画像の保存機能を提供する。
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// AvatarStorage はアバター画像保存のインターフェース。
// ユーザーサービスから利用し、保存先（ローカルディスク、オブジェクトストレージ等）を抽象化する。
type AvatarStorage interface {
	// Save はアバター画像を保存し、公開URLを返す。
	// extはドットを含む拡張子（".png"等）。
	Save(userID, ext string, r io.Reader) (string, error)

	// Delete は指定ユーザーのアバター画像を削除する。
	// ファイルが存在しない場合もエラーにしない。
	Delete(userID string) error
}

// DiskAvatarStorage はローカルディスクへのアバター保存の実装。
// ファイル名は<userID>.<ext>で固定し、再アップロードで上書きされる。
type DiskAvatarStorage struct {
	dir     string
	baseURL string
}

// NewDiskAvatarStorage はDiskAvatarStorageを生成し、保存ディレクトリを用意する。
func NewDiskAvatarStorage(dir, baseURL string) (*DiskAvatarStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory: %w", err)
	}
	return &DiskAvatarStorage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save はアバター画像を保存し、公開URLを返す。
// 同一ユーザーの旧ファイルは拡張子が変わっても残らないよう先に削除する。
func (s *DiskAvatarStorage) Save(userID, ext string, r io.Reader) (string, error) {
	if err := s.Delete(userID); err != nil {
		return "", err
	}

	filename := userID + ext
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write avatar file: %w", err)
	}

	return s.baseURL + "/" + filename, nil
}

// Delete は指定ユーザーのアバター画像を削除する。
func (s *DiskAvatarStorage) Delete(userID string) error {
	matches, err := filepath.Glob(filepath.Join(s.dir, userID+".*"))
	if err != nil {
		return fmt.Errorf("failed to list avatar files: %w", err)
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove avatar file: %w", err)
		}
	}
	return nil
}

// compile-time interface check
var _ AvatarStorage = (*DiskAvatarStorage)(nil)
