// Package vconv converts raw video frames between pixel formats, color
// spaces, bit depths and sizes.
//
// # Overview
//
// A Converter is built once for a pair of frame descriptors and a Config.
// It plans the conversion up front (unpack, color matrix, horizontal and
// vertical resampling, dither, repack) and then converts any number of
// frames with that plan:
//
//	in := video.NewInfo(video.FormatI420, 1920, 1080)
//	out := video.NewInfo(video.FormatRGBA, 1280, 720)
//	cfg := vconv.DefaultConfig()
//	cfg.Threads = 0 // one band per CPU
//
//	conv, err := vconv.New(in, out, &cfg)
//	if err != nil {
//	    return err
//	}
//	defer conv.Close()
//
//	err = conv.Convert(srcFrame, dstFrame)
//
// # Configuration
//
// Config is a typed record. ParseConfig and Config.Map provide the
// equivalent key/value form ("resampler-method", "dither-method",
// "dest-width", ...) for command lines and pipelines. SetConfig replaces the
// plan of a live Converter; frames being converted keep the plan they
// started with.
//
// # Packages
//
//   - resample: polyphase filter tables for any rational scale factor
//   - video: formats, colorimetry, frame descriptors and frames
//
// # Logging
//
// vconv is silent by default. See SetLogger.
package vconv
