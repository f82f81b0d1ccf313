package chat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// ttsGenerator synthesizes speech into a local audio file.
type ttsGenerator interface {
	Generate(ctx context.Context, langCode, text string) (string, error)
}

// AudioUploader turns text into a reusable chat audio attachment: it
// synthesizes a local file and uploads it to a scratch chat, whose
// attachment id then works in any conversation.
type AudioUploader struct {
	tts        ttsGenerator
	sender     Sender
	tempChatID int64
	log        *slog.Logger
}

// NewAudioUploader creates an AudioUploader posting into tempChatID.
func NewAudioUploader(tts ttsGenerator, sender Sender, tempChatID int64, logger *slog.Logger) *AudioUploader {
	return &AudioUploader{
		tts:        tts,
		sender:     sender,
		tempChatID: tempChatID,
		log:        logger.With("component", "audio_uploader"),
	}
}

// Pronounce synthesizes text and returns the uploaded attachment id.
func (u *AudioUploader) Pronounce(ctx context.Context, langCode, text string) (string, error) {
	path, err := u.tts.Generate(ctx, langCode, text)
	if err != nil {
		return "", fmt.Errorf("synthesize %q: %w", text, err)
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			u.log.WarnContext(ctx, "remove audio temp file", slog.String("error", err.Error()))
		}
	}()

	audioID, err := u.sender.UploadAudio(ctx, u.tempChatID, path)
	if err != nil {
		return "", fmt.Errorf("upload audio for %q: %w", text, err)
	}
	return audioID, nil
}
