/*
Example code showing how to perform human pose estimation on an image using
the OpenPose graph_opt.pb model.
*/
package main

import (
	"flag"
	"log"
	"os"

	"github.com/swdee/go-openpose"
	"github.com/swdee/go-openpose/estimator"
	"github.com/swdee/go-openpose/postprocess"
	"github.com/swdee/go-openpose/preprocess"
	"github.com/swdee/go-openpose/render"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/models/graph_opt.pb", "OpenPose TensorFlow model file")
	imgFile := flag.String("i", "../data/1.png", "Image file to run pose estimation on")
	saveFile := flag.String("o", "../data/1-out.jpg", "The output JPG file with skeleton rendered")
	thresPercent := flag.Int("t", 0, "Threshold for detecting the key points, 0-100 in steps of 5")
	backend := flag.String("b", "default", "DNN backend [default|openvino|opencv|vulkan|cuda]")
	target := flag.String("d", "cpu", "DNN target device [cpu|fp32|fp16|vpu|vulkan|fpga|cuda|cudafp16]")
	cores := flag.String("c", "", "CPU cores to pin inference to, eg: 4-7")
	labels := flag.Bool("l", false, "Render body part names next to each joint")

	flag.Parse()

	if *cores != "" {
		list, err := openpose.ParseCoreList(*cores)

		if err != nil {
			log.Fatal("Invalid CPU core list: ", err)
		}

		err = openpose.SetCPUAffinity(openpose.CPUCoreMask(list))

		if err != nil {
			log.Printf("Failed to set CPU affinity: %v\n", err)
		}
	}

	threshold, err := postprocess.ThresholdFromPercent(*thresPercent)

	if err != nil {
		log.Fatal("Invalid threshold: ", err)
	}

	// create runtime instance
	rt, err := openpose.NewRuntime(*modelFile)

	if err != nil {
		log.Fatal("Error initializing runtime: ", err)
	}

	err = rt.SetBackend(gocv.ParseNetBackend(*backend))

	if err != nil {
		log.Fatal("Error setting backend: ", err)
	}

	err = rt.SetTarget(gocv.ParseNetTarget(*target))

	if err != nil {
		log.Fatal("Error setting target: ", err)
	}

	// optional querying of model file for printing to stdout. not necessary
	// for production inference code
	err = rt.Query(os.Stdout)

	if err != nil {
		log.Fatal("Error querying runtime: ", err)
	}

	// load image, this is also the fallback image when -i is not given
	img, err := preprocess.ReadImageFile(*imgFile)

	if err != nil {
		log.Fatal("Error reading image: ", err)
	}

	defer img.Close()

	style := render.DefaultPoseStyle()
	style.Labels = *labels

	est := estimator.New(rt, style)

	res, err := est.Estimate(img, threshold)

	if err != nil {
		log.Fatal("Pose estimation failed: ", err)
	}

	defer res.Close()

	for _, kp := range res.Pose.Found() {
		log.Printf("  %s score=%.3f\n", kp, kp.Score)
	}

	log.Printf("Threshold=%.2f, keypoints=%d, edges=%d\n", threshold,
		res.Pose.Count(), len(res.Edges))

	log.Printf("Model first run speed: inference=%s, post processing=%s, rendering=%s, total time=%s\n",
		res.Timing.Inference.String(),
		res.Timing.PostProcess.String(),
		res.Timing.Rendering.String(),
		res.Timing.Total().String(),
	)

	// Save the result
	if ok := gocv.IMWrite(*saveFile, res.Image); !ok {
		log.Fatal("Failed to save the image")
	}

	log.Printf("Saved pose estimation result to %s\n", *saveFile)

	// close runtime and release resources
	err = rt.Close()

	if err != nil {
		log.Fatal("Error closing runtime: ", err)
	}

	log.Println("done")
}
