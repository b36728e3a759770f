package service

import "errors"

var ErrAttachmentTooLarge = errors.New("attachment exceeds the configured size limit")
