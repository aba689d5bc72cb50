package service

import "fmt"

// Blob artifact keys, one folder per panel.
func questionsArtifactKey(panelID string) string {
	return fmt.Sprintf("%s/questions.json", panelID)
}

func clusterArtifactKey(panelID string) string {
	return fmt.Sprintf("%s/sortedCluster.json", panelID)
}
