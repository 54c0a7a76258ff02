// Package synccheck reads the branch synchronization health out of a Tecnicon
// "Status Sincronismo" dashboard snapshot.
//
// Quick start:
//
//	c, err := synccheck.New(synccheck.WithMaxDelay(5 * time.Minute))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, _ := c.Check(html)
//	fmt.Println(res.Line()) // STATUS_OK or STATUS_PROBLEMA: <reason>
//
// A Checker holds no per-check state and is safe for concurrent use.
package synccheck
