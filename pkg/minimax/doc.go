// Package minimax provides a Go client for the MiniMax generative media API:
// speech synthesis, voice cloning and design, video generation and music
// generation.
//
// # Basic Usage
//
//	client := minimax.NewClient("your-api-key", minimax.WithGroupID("123"))
//
//	resp, err := client.Speech.Synthesize(ctx, &minimax.SpeechRequest{
//	    Model: minimax.ModelSpeech02HD,
//	    Text:  "Hello, world!",
//	    VoiceSetting: &minimax.VoiceSetting{
//	        VoiceID: "male-qn-qingse",
//	        Speed:   1,
//	        Vol:     1,
//	    },
//	})
//
// Audio payloads are returned as received (hex text or a URL); decoding and
// writing them to disk is the job of package media.
//
// # Async Tasks
//
// Video generation returns a Task that is driven by a Poller:
//
//	task, err := client.Video.Create(ctx, req)
//	if err != nil {
//	    return err
//	}
//	result, err := task.Wait(ctx, minimax.Poller{
//	    Interval: 10 * time.Second,
//	    MaxWait:  10 * time.Minute,
//	})
//
// The poller queries first, then sleeps. It stops on Success, on Failed
// (returning *TaskFailedError), once MaxWait has elapsed (returning
// *TimeoutError), or when ctx is cancelled. Query errors are returned
// immediately and are not retried.
//
// # Error Handling
//
// Every error returned by this package can be classified with KindOf:
//
//	resp, err := client.Music.Generate(ctx, req)
//	if err != nil {
//	    if e, ok := minimax.AsError(err); ok && e.IsRateLimit() {
//	        // Handle rate limiting
//	    }
//	    return err
//	}
//
// # Configuration
//
//	client := minimax.NewClient("api-key",
//	    minimax.WithBaseURL("https://api.minimaxi.chat"),
//	    minimax.WithTimeout(30*time.Second),
//	    minimax.WithRetry(2, time.Second),
//	)
package minimax
